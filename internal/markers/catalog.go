package markers

// FileRole names a generated file this tool is permitted to extend.
type FileRole string

const (
	RoleModule FileRole = "module"
	RoleStores FileRole = "stores"
)

// Path returns the file's location relative to the project root.
func (r FileRole) Path() string {
	switch r {
	case RoleModule:
		return "src/module.rs"
	case RoleStores:
		return "src/stores.rs"
	}
	return ""
}

// Anchor maps a logical insertion-point name to the literal token searched
// for in one generated file.
type Anchor struct {
	Role  FileRole
	Name  string
	Token string
}

// Catalog is the complete set of anchors the scaffolder may extend,
// in the order they are applied. It is the only process-wide state in this
// package and is never mutated at runtime.
var Catalog = []Anchor{
	{RoleModule, "entity_types", "[loam:entity_types]"},
	{RoleModule, "register_entities", "[loam:register_entities]"},
	{RoleModule, "entity_fetchers", "[loam:entity_fetchers]"},
	{RoleModule, "entity_creators", "[loam:entity_creators]"},
	{RoleStores, "store_fields", "[loam:store_fields]"},
	{RoleStores, "store_init_vars", "[loam:store_init_vars]"},
	{RoleStores, "store_init_fields", "[loam:store_init_fields]"},
}
