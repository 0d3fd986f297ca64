// Package scaffold renders loam-rs boilerplate and keeps already-generated
// files consistent when entities are added. Rendering is plain
// text/template over fixed template strings; consistency editing goes
// through the markers package.
package scaffold

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/lithammer/dedent"

	"github.com/loamworks/loam/internal/naming"
)

var funcs = template.FuncMap{
	"snake":  naming.Snake,
	"pascal": naming.Pascal,
	"plural": naming.Plural,
}

// render executes one of the registered templates against data.
func render(name string, data any) (string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	t, err := template.New(name).Funcs(funcs).Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return b.String(), nil
}

// prep dedents a template literal and drops the leading blank line so the
// literals below can stay indented with the code.
func prep(s string) string {
	return strings.TrimPrefix(dedent.Dedent(s), "\n")
}

var templates = map[string]string{
	"project/Cargo.toml": prep(`
		[package]
		name = "{{.Name}}"
		version = "0.1.0"
		edition = "2021"

		[dependencies]
		loam = "0.4"
		tokio = { version = "1", features = ["full"] }
	`),

	"project/main.rs": prep(`
		mod entities;
		mod module;
		mod stores;

		use loam::prelude::*;

		use crate::module::AppModule;
		use crate::stores::Stores;

		#[tokio::main]
		async fn main() {
		    let stores = Stores::new();
		    Server::new(AppModule, stores)
		        .bind("0.0.0.0:{{.Port}}")
		        .serve()
		        .await
		        .expect("server failed");
		}
	`),

	"project/module.rs": prep(`
		use loam::prelude::*;

		use crate::stores::Stores;

		pub struct AppModule;

		impl Module for AppModule {
		    fn entity_types(&self) -> Vec<&'static str> {
		        vec![
		            // [loam:entity_types]
		        ]
		    }

		    fn register_entities(&self, registry: &mut EntityRegistry, stores: &Stores) {
		        // [loam:register_entities]
		    }

		    fn entity_fetcher(&self, entity_type: &str, stores: &Stores) -> Option<Box<dyn EntityFetcher>> {
		        match entity_type {
		            // [loam:entity_fetchers]
		            _ => None,
		        }
		    }

		    fn entity_creator(&self, entity_type: &str, stores: &Stores) -> Option<Box<dyn EntityCreator>> {
		        match entity_type {
		            // [loam:entity_creators]
		            _ => None,
		        }
		    }
		}
	`),

	"project/stores.rs": prep(`
		use std::sync::Arc;

		use loam::prelude::*;

		pub struct Stores {
		    // [loam:store_fields]
		}

		impl Stores {
		    pub fn new() -> Self {
		        // [loam:store_init_vars]
		        Self {
		            // [loam:store_init_fields]
		        }
		    }
		}
	`),

	"project/entities_mod.rs": prep(`
		// Entity modules are registered here by loam.
	`),

	"project/links.yaml": prep(`
		entities: []
		links: []
		validation_rules: {}
	`),

	"project/gitignore": prep(`
		/target
		*.log
	`),

	"entity/model.rs": prep(`
		use loam::prelude::*;

		impl_data_entity{{if .Validated}}_validated{{end}}!(
		    {{.Pascal}},
		    "{{.Name}}",
		    [{{range $i, $f := .Indexed}}{{if $i}}, {{end}}"{{$f}}"{{end}}],
		    {
		{{- range .Fields}}
		        {{.Name}}: {{.Decl}},
		{{- end}}
		    }
		);
	`),

	"entity/store.rs": prep(`
		use std::sync::Arc;

		use loam::prelude::*;

		use super::model::{{.Pascal}};

		pub type {{.Pascal}}Store = InMemoryDataService<{{.Pascal}}>;

		pub fn new_store() -> Arc<{{.Pascal}}Store> {
		    Arc::new(InMemoryDataService::new())
		}
	`),

	"entity/handlers.rs": prep(`
		use std::sync::Arc;

		use loam::prelude::*;

		use super::model::{{.Pascal}};
		use super::store::{{.Pascal}}Store;

		#[derive(Clone)]
		pub struct {{.Pascal}}State {
		    pub store: Arc<{{.Pascal}}Store>,
		}

		pub async fn list_{{.Plural}}(State(state): State<{{.Pascal}}State>) -> Json<Vec<{{.Pascal}}>> {
		    Json(state.store.list().await)
		}

		pub async fn get_{{.Name}}(State(state): State<{{.Pascal}}State>, Path(id): Path<String>) -> Result<Json<{{.Pascal}}>, StatusCode> {
		    state.store.get(&id).await.map(Json).ok_or(StatusCode::NOT_FOUND)
		}

		pub async fn create_{{.Name}}(State(state): State<{{.Pascal}}State>, Json(input): Json<{{.Pascal}}>) -> Json<{{.Pascal}}> {
		    Json(state.store.create(input).await)
		}

		pub async fn update_{{.Name}}(State(state): State<{{.Pascal}}State>, Path(id): Path<String>, Json(input): Json<{{.Pascal}}>) -> Result<Json<{{.Pascal}}>, StatusCode> {
		    state.store.update(&id, input).await.map(Json).ok_or(StatusCode::NOT_FOUND)
		}

		pub async fn delete_{{.Name}}(State(state): State<{{.Pascal}}State>, Path(id): Path<String>) -> StatusCode {
		    if state.store.delete(&id).await {
		        StatusCode::NO_CONTENT
		    } else {
		        StatusCode::NOT_FOUND
		    }
		}
	`),

	"entity/descriptor.rs": prep(`
		use std::sync::Arc;

		use loam::prelude::*;

		use super::handlers::*;
		use super::store::{{.Pascal}}Store;

		pub struct {{.Pascal}}Descriptor {
		    pub store: Arc<{{.Pascal}}Store>,
		}

		impl EntityDescriptor for {{.Pascal}}Descriptor {
		    fn entity_type(&self) -> &str {
		        "{{.Name}}"
		    }

		    fn plural(&self) -> &str {
		        "{{.Plural}}"
		    }

		    fn build_routes(&self) -> Router {
		        let state = {{.Pascal}}State {
		            store: self.store.clone(),
		        };
		        Router::new()
		            .route("/{{.Plural}}", get(list_{{.Plural}}).post(create_{{.Name}}))
		            .route(
		                "/{{.Plural}}/{id}",
		                get(get_{{.Name}}).put(update_{{.Name}}).delete(delete_{{.Name}}),
		            )
		            .with_state(state)
		    }
		}
	`),

	"entity/mod.rs": prep(`
		pub mod descriptor;
		pub mod handlers;
		pub mod model;
		pub mod store;
	`),

	"webapp/package.json": prep(`
		{
		  "name": "{{.Name}}-front",
		  "private": true,
		  "version": "0.1.0",
		  "type": "module",
		  "scripts": {
		    "dev": "vite",
		    "build": "tsc && vite build",
		    "preview": "vite preview"
		  },
		  "dependencies": {
		    "react": "^18.3.1",
		    "react-dom": "^18.3.1"
		  },
		  "devDependencies": {
		    "@types/react": "^18.3.3",
		    "@types/react-dom": "^18.3.0",
		    "@vitejs/plugin-react": "^4.3.1",
		    "typescript": "^5.5.3",
		    "vite": "^5.4.0"
		  }
		}
	`),

	"webapp/vite.config.ts": prep(`
		import { defineConfig } from "vite";
		import react from "@vitejs/plugin-react";

		export default defineConfig({
		  plugins: [react()],
		  server: {
		    proxy: {
		      "/api": {
		        target: "http://localhost:{{.Port}}",
		        changeOrigin: true,
		        rewrite: (path) => path.replace(/^\/api/, ""),
		      },
		    },
		  },
		});
	`),

	"webapp/tsconfig.json": prep(`
		{
		  "compilerOptions": {
		    "target": "ES2020",
		    "lib": ["ES2020", "DOM", "DOM.Iterable"],
		    "module": "ESNext",
		    "moduleResolution": "bundler",
		    "jsx": "react-jsx",
		    "strict": true,
		    "skipLibCheck": true,
		    "noEmit": true
		  },
		  "include": ["src"]
		}
	`),

	"webapp/index.html": prep(`
		<!doctype html>
		<html lang="en">
		  <head>
		    <meta charset="UTF-8" />
		    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
		    <title>{{.Name}}</title>
		  </head>
		  <body>
		    <div id="root"></div>
		    <script type="module" src="/src/main.tsx"></script>
		  </body>
		</html>
	`),

	"webapp/main.tsx": prep(`
		import React from "react";
		import ReactDOM from "react-dom/client";
		import App from "./App";

		ReactDOM.createRoot(document.getElementById("root")!).render(
		  <React.StrictMode>
		    <App />
		  </React.StrictMode>,
		);
	`),

	"webapp/App.tsx": prep(`
		export default function App() {
		  return (
		    <main>
		      <h1>{{.Name}}</h1>
		      <p>Generated by loam. Edit src/App.tsx to get started.</p>
		    </main>
		  );
		}
	`),

	"desktop/Cargo.toml": prep(`
		[package]
		name = "{{.Name}}_desktop"
		version = "0.1.0"
		edition = "2021"

		[build-dependencies]
		tauri-build = { version = "2", features = [] }

		[dependencies]
		tauri = { version = "2", features = [] }
	`),

	"desktop/tauri.conf.json": prep(`
		{
		  "$schema": "https://schema.tauri.app/config/2",
		  "productName": "{{.Name}}",
		  "version": "0.1.0",
		  "identifier": "dev.loam.{{.Name}}",
		  "build": {
		    "frontendDist": "{{.FrontDist}}",
		    "devUrl": "http://localhost:5173"
		  },
		  "app": {
		    "windows": [
		      {
		        "title": "{{.Name}}",
		        "width": 1100,
		        "height": 750
		      }
		    ]
		  }
		}
	`),

	"desktop/main.rs": prep(`
		#![cfg_attr(not(debug_assertions), windows_subsystem = "windows")]

		fn main() {
		    tauri::Builder::default()
		        .run(tauri::generate_context!())
		        .expect("error while running tauri application");
		}
	`),

	"desktop/build.rs": prep(`
		fn main() {
		    tauri_build::build()
		}
	`),

	"desktop/capabilities.json": prep(`
		{
		  "identifier": "default",
		  "windows": ["main"],
		  "permissions": ["core:default"]
		}
	`),
}
