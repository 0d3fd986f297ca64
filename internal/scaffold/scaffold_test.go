package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/markers"
	"github.com/loamworks/loam/internal/workspace"
	"github.com/loamworks/loam/internal/writer"
)

func productEntity() Entity {
	return NewEntity("product", []Field{
		{Name: "sku", Type: "String"},
		{Name: "price", Type: "f64"},
		{Name: "note", Type: "String", Optional: true},
	}, []string{"sku"}, false)
}

func newProject(t *testing.T) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "shop")
	require.NoError(t, CreateProject(writer.NewReal(), dir, NewProject("shop", 0)))
	return dir, filepath.Join(dir, "api")
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("sku:String, price:f64,note:Option<String>")
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, Field{Name: "sku", Type: "String"}, fields[0])
	assert.Equal(t, Field{Name: "price", Type: "f64"}, fields[1])
	assert.Equal(t, Field{Name: "note", Type: "String", Optional: true}, fields[2])
}

func TestParseFields_EmptySpecIsEmptyList(t *testing.T) {
	// The framework injects id and the timestamps, so an entity with no
	// declared fields is valid.
	fields, err := ParseFields("")
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = ParseFields(" , ")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestParseFieldsRejects(t *testing.T) {
	cases := map[string]string{
		"no colon":      "sku",
		"reserved":      "id:Uuid",
		"duplicate":     "sku:String,sku:String",
		"unknown type":  "when:DateTime",
		"nested option": "x:Option<Option<String>>",
		"missing name":  ":String",
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFields(spec)
			assert.Error(t, err)
		})
	}
}

func TestCreateProjectLayout(t *testing.T) {
	dir, api := newProject(t)

	for _, rel := range []string{
		workspace.ConfigFile,
		"api/Cargo.toml",
		"api/src/main.rs",
		"api/src/module.rs",
		"api/src/stores.rs",
		"api/src/entities/mod.rs",
		"api/config/links.yaml",
		"api/.gitignore",
	} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}

	cfg, err := workspace.Load(filepath.Join(dir, workspace.ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Name)
	assert.Equal(t, 3000, cfg.API.Port)

	root, err := workspace.DetectProjectRoot(api)
	require.NoError(t, err)
	assert.Equal(t, api, root)
}

func TestCreateProjectEmitsEveryAnchor(t *testing.T) {
	_, api := newProject(t)
	for _, a := range markers.Catalog {
		data, err := os.ReadFile(filepath.Join(api, a.Role.Path()))
		require.NoError(t, err)
		_, err = markers.Locate(string(data), a.Token)
		assert.NoError(t, err, "%s in %s", a.Token, a.Role.Path())
	}
}

func TestCreateProjectRefusesExisting(t *testing.T) {
	dir, _ := newProject(t)
	err := CreateProject(writer.NewReal(), dir, NewProject("shop", 0))
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateEntityFiles(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, CreateEntity(writer.NewReal(), api, productEntity()))

	dir := filepath.Join(api, "src", "entities", "product")
	for _, f := range []string{"model.rs", "store.rs", "handlers.rs", "descriptor.rs", "mod.rs"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	mod, err := os.ReadFile(filepath.Join(api, "src", "entities", "mod.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "pub mod product;")
}

func TestCreateEntityRefusesDuplicate(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, CreateEntity(writer.NewReal(), api, productEntity()))
	err := CreateEntity(writer.NewReal(), api, productEntity())
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateEntityRejectsUnknownIndex(t *testing.T) {
	_, api := newProject(t)
	e := NewEntity("product", []Field{{Name: "sku", Type: "String"}}, []string{"price"}, false)
	err := CreateEntity(writer.NewReal(), api, e)
	assert.ErrorContains(t, err, "not declared")
}

func TestModuleDeclarationsStaySorted(t *testing.T) {
	_, api := newProject(t)
	w := writer.NewReal()
	for _, name := range []string{"product", "category", "warehouse"} {
		e := NewEntity(name, []Field{{Name: "label", Type: "String"}}, nil, false)
		require.NoError(t, CreateEntity(w, api, e))
	}
	mod, err := os.ReadFile(filepath.Join(api, "src", "entities", "mod.rs"))
	require.NoError(t, err)
	content := string(mod)
	assert.Less(t, strings.Index(content, "pub mod category;"), strings.Index(content, "pub mod product;"))
	assert.Less(t, strings.Index(content, "pub mod product;"), strings.Index(content, "pub mod warehouse;"))
}

// The extractor must be able to read back everything the generator writes.
func TestGeneratedModelRoundTrips(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, CreateEntity(writer.NewReal(), api, productEntity()))

	data, err := os.ReadFile(filepath.Join(api, "src", "entities", "product", "model.rs"))
	require.NoError(t, err)
	rec, err := introspect.ParseEntityModel(string(data), "model.rs")
	require.NoError(t, err)

	assert.Equal(t, "product", rec.Name)
	assert.Equal(t, "Product", rec.Pascal)
	assert.Equal(t, []string{"sku"}, rec.IndexedFields)
	assert.Equal(t, []introspect.FieldDescriptor{
		{Name: "sku", Type: "String"},
		{Name: "price", Type: "f64"},
		{Name: "note", Type: "String", Optional: true},
	}, rec.Fields)
}

func TestGeneratedValidatedModelRoundTrips(t *testing.T) {
	_, api := newProject(t)
	e := NewEntity("order", []Field{{Name: "total", Type: "f64"}}, nil, true)
	require.NoError(t, CreateEntity(writer.NewReal(), api, e))

	data, err := os.ReadFile(filepath.Join(api, "src", "entities", "order", "model.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "impl_data_entity_validated!")
	rec, err := introspect.ParseEntityModel(string(data), "model.rs")
	require.NoError(t, err)
	assert.Equal(t, "order", rec.Name)
}

func TestGeneratedFieldlessModelRoundTrips(t *testing.T) {
	_, api := newProject(t)
	e := NewEntity("checkpoint", nil, nil, false)
	require.NoError(t, CreateEntity(writer.NewReal(), api, e))

	data, err := os.ReadFile(filepath.Join(api, "src", "entities", "checkpoint", "model.rs"))
	require.NoError(t, err)
	rec, err := introspect.ParseEntityModel(string(data), "model.rs")
	require.NoError(t, err)
	assert.Equal(t, "checkpoint", rec.Name)
	assert.Empty(t, rec.Fields)
}

func TestGeneratedDescriptorRoundTrips(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, CreateEntity(writer.NewReal(), api, productEntity()))

	data, err := os.ReadFile(filepath.Join(api, "src", "entities", "product", "descriptor.rs"))
	require.NoError(t, err)
	plural, routes := introspect.ParseDescriptor(string(data))

	assert.Equal(t, "products", plural)
	assert.Equal(t, []introspect.RouteRecord{
		{Method: "GET", Path: "/products", Summary: "list_products"},
		{Method: "POST", Path: "/products", Summary: "create_product"},
		{Method: "GET", Path: "/products/{id}", Summary: "get_product"},
		{Method: "PUT", Path: "/products/{id}", Summary: "update_product"},
		{Method: "DELETE", Path: "/products/{id}", Summary: "delete_product"},
	}, routes)
}

func TestRegisterEntityAppliesEveryAnchor(t *testing.T) {
	_, api := newProject(t)
	e := productEntity()
	reg, err := RegisterEntity(writer.NewReal(), api, e)
	require.NoError(t, err)
	assert.Empty(t, reg.Legacy)
	assert.Len(t, reg.Applied, len(markers.Catalog))

	module, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(module), `use crate::entities::product::descriptor::ProductDescriptor;`)
	assert.Contains(t, string(module), `"product",`)
	assert.Contains(t, string(module), "registry.register(Box::new(ProductDescriptor")
	assert.Contains(t, string(module), `"product" => Some(Box::new(EntityFetcherImpl::new(stores.product_store.clone()))),`)
	assert.Contains(t, string(module), `"product" => Some(Box::new(EntityCreatorImpl::new(stores.product_store.clone()))),`)

	stores, err := os.ReadFile(filepath.Join(api, "src", "stores.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(stores), `use crate::entities::product::model::Product;`)
	assert.Contains(t, string(stores), "pub product_store: Arc<InMemoryDataService<Product>>,")
	assert.Contains(t, string(stores), "let product_store = Arc::new(InMemoryDataService::new());")
}

func TestRegisterEntityIsIdempotent(t *testing.T) {
	_, api := newProject(t)
	e := productEntity()
	_, err := RegisterEntity(writer.NewReal(), api, e)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)

	reg, err := RegisterEntity(writer.NewReal(), api, e)
	require.NoError(t, err)
	assert.Empty(t, reg.Applied)

	second, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRegisterEntityTwoEntitiesCoexist(t *testing.T) {
	_, api := newProject(t)
	w := writer.NewReal()
	_, err := RegisterEntity(w, api, productEntity())
	require.NoError(t, err)
	_, err = RegisterEntity(w, api, NewEntity("category", []Field{{Name: "label", Type: "String"}}, nil, false))
	require.NoError(t, err)

	module, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)
	for _, a := range markers.Catalog {
		if a.Role != markers.RoleModule {
			continue
		}
		for _, name := range []string{"product", "category"} {
			e := NewEntity(name, nil, nil, false)
			_, needle := e.AnchorLine(a.Name)
			assert.True(t, markers.HasLineAfter(string(module), a.Token, needle),
				"%s missing for %s", a.Name, name)
		}
	}
}

func TestRegisterEntitySharedSuffixNamesDoNotCollide(t *testing.T) {
	_, api := newProject(t)
	w := writer.NewReal()
	_, err := RegisterEntity(w, api, NewEntity("order_item", []Field{{Name: "qty", Type: "i64"}}, nil, false))
	require.NoError(t, err)

	// "item" shares a suffix with "order_item"; its registration must not be
	// mistaken for already present.
	reg, err := RegisterEntity(w, api, NewEntity("item", []Field{{Name: "label", Type: "String"}}, nil, false))
	require.NoError(t, err)
	assert.Len(t, reg.Applied, len(markers.Catalog))

	stores, err := os.ReadFile(filepath.Join(api, "src", "stores.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(stores), "pub item_store: Arc<InMemoryDataService<Item>>,")
	assert.Contains(t, string(stores), "pub order_item_store: Arc<InMemoryDataService<OrderItem>>,")
	assert.Contains(t, string(stores), "\n            item_store,")
	assert.Contains(t, string(stores), "let item_store = Arc::new(InMemoryDataService::new());")

	module, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(module), "\n            \"item\",")
}

func TestRegisterEntityLegacyFileReportsManualLines(t *testing.T) {
	_, api := newProject(t)
	modulePath := filepath.Join(api, "src", "module.rs")
	require.NoError(t, os.WriteFile(modulePath, []byte("use loam::prelude::*;\n\npub struct AppModule;\n"), 0o644))

	reg, err := RegisterEntity(writer.NewReal(), api, productEntity())
	require.NoError(t, err)
	require.Len(t, reg.Legacy, 1)
	assert.Equal(t, "src/module.rs", reg.Legacy[0].Path)
	assert.Contains(t, reg.Legacy[0].Lines, "use crate::entities::product::descriptor::ProductDescriptor;")
	assert.Contains(t, reg.Legacy[0].Lines, `"product",`)

	// files the anchors survive in are still updated
	stores, err := os.ReadFile(filepath.Join(api, "src", "stores.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(stores), "pub product_store")
}

func TestRegisterEntityMissingFile(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(api, "src", "stores.rs")))

	reg, err := RegisterEntity(writer.NewReal(), api, productEntity())
	require.NoError(t, err)
	require.Len(t, reg.Legacy, 1)
	assert.Equal(t, "src/stores.rs", reg.Legacy[0].Path)
	assert.NotEmpty(t, reg.Legacy[0].Lines)
}

func TestDryRunLeavesDiskUntouched(t *testing.T) {
	_, api := newProject(t)
	var out strings.Builder
	w := writer.NewDry(&out)

	require.NoError(t, CreateEntity(w, api, productEntity()))
	_, err := RegisterEntity(w, api, productEntity())
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(api, "src", "entities", "product"))
	assert.True(t, os.IsNotExist(statErr))
	module, err := os.ReadFile(filepath.Join(api, "src", "module.rs"))
	require.NoError(t, err)
	assert.NotContains(t, string(module), "ProductDescriptor")
	assert.Contains(t, out.String(), "would create")
}
