// Package config loads advreg.yaml configuration files.
//
// A configuration selects the data source the registry is built from, the
// namespace prefix stripped by namespaced lookups, lookup-service settings and
// logging. Unset fields fall back to the values returned by Default.
//
//	cfg, err := config.LoadFromCurrentDir()
//	if err != nil {
//		cfg = config.Default()
//	}
//
// Example file:
//
//	source:
//	  type: datapack
//	  path: ./world/datapacks/quests
//	  default_namespace: minecraft
//	registry:
//	  namespace: "minecraft:"
//	  strict_parents: true
//	serve:
//	  port: 50051
//	  graceful_timeout: 10s
//	log:
//	  level: debug
//	  format: json
package config
