package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/writer"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "shop")
	require.NoError(t, scaffold.CreateProject(writer.NewReal(), dir, scaffold.NewProject("shop", 0)))
	return New(dir, "test"), dir
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestInitProjectTool(t *testing.T) {
	parent := t.TempDir()
	s := New(parent, "test")
	res, err := s.initProject(context.Background(), callReq(map[string]any{
		"name": "shop",
		"port": 4000,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "port 4000")

	_, err = os.Stat(filepath.Join(parent, "shop", "loam.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(parent, "shop", "api", "src", "module.rs"))
	assert.NoError(t, err)
}

func TestAddTargetTool(t *testing.T) {
	s, dir := testServer(t)
	res, err := s.addTarget(context.Background(), callReq(map[string]any{
		"target_type": "webapp",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	_, err = os.Stat(filepath.Join(dir, "front", "package.json"))
	assert.NoError(t, err)
}

func TestAddTargetToolOutsideWorkspace(t *testing.T) {
	s := New(t.TempDir(), "test")
	res, err := s.addTarget(context.Background(), callReq(map[string]any{
		"target_type": "webapp",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAddEntityTool(t *testing.T) {
	s, dir := testServer(t)
	res, err := s.addEntity(context.Background(), callReq(map[string]any{
		"name":   "product",
		"fields": "sku:String,price:f64",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `created entity "product"`)

	_, err = os.Stat(filepath.Join(dir, "api", "src", "entities", "product", "model.rs"))
	assert.NoError(t, err)
}

func TestAddEntityToolWithoutFields(t *testing.T) {
	s, dir := testServer(t)
	res, err := s.addEntity(context.Background(), callReq(map[string]any{
		"name": "checkpoint",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	_, err = os.Stat(filepath.Join(dir, "api", "src", "entities", "checkpoint", "model.rs"))
	assert.NoError(t, err)
}

func TestAddEntityToolRejectsBadFields(t *testing.T) {
	s, _ := testServer(t)
	res, err := s.addEntity(context.Background(), callReq(map[string]any{
		"name":   "product",
		"fields": "when:DateTime",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAddLinkTool(t *testing.T) {
	s, dir := testServer(t)
	res, err := s.addLink(context.Background(), callReq(map[string]any{
		"source": "product",
		"target": "category",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "has_category")

	data, err := os.ReadFile(filepath.Join(dir, "api", "config", "links.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "link_type: has_category")
}

func TestProjectInfoTool(t *testing.T) {
	s, _ := testServer(t)
	_, err := s.addEntity(context.Background(), callReq(map[string]any{
		"name":   "product",
		"fields": "sku:String",
	}))
	require.NoError(t, err)

	res, err := s.projectInfo(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"name": "product"`)
}

func TestCheckHealthTool(t *testing.T) {
	s, dir := testServer(t)
	res, err := s.checkHealth(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	require.NoError(t, os.Remove(filepath.Join(dir, "api", "src", "main.rs")))
	res, err = s.checkHealth(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGenerateClientTool(t *testing.T) {
	s, _ := testServer(t)
	_, err := s.addEntity(context.Background(), callReq(map[string]any{
		"name":   "product",
		"fields": "sku:String",
	}))
	require.NoError(t, err)

	res, err := s.generateClient(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "export interface Product")
}
