// Package protoreg loads structured prototype records (game data such as
// item or ability definitions) from external JSON or YAML documents into
// strongly typed in-memory registries, and emits a composite JSON Schema
// describing every registered shape for external tooling.
//
// # Core Concepts
//
//   - Identifiers: stable 64-bit FNV-1a hashes of human-readable names,
//     used as the primary key for stored records (package id)
//   - Types: shapes registered under a discriminant string, the tag a
//     document uses to say which shape a payload deserializes into
//   - Documents: JSON or YAML files holding one prototype record or a
//     list of them (package document)
//   - Registry: per-type collections of loaded records with duplicate
//     rejection and change notification (package registry)
//   - Loader: the pipeline that resolves discriminants, decodes payloads
//     and resolves reference fields to resource handles (package loader)
//
// # Lifecycle
//
// A host registers every prototype shape during setup, then loads
// documents during steady state:
//
//	reg := registry.New()
//	registry.Register[Sword](reg, "sword")
//	registry.Register[Potion](reg, "potion")
//
//	ld, err := loader.New(reg, loader.WithResourceLoader(resource.NewFSLoader(assets)))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := ld.LoadDir(ctx, assets, "protos"); err != nil {
//		log.Fatal(err)
//	}
//
//	sword, ok := registry.GetByName[Sword](reg, "excalibur")
//
// Registration must complete before loading begins; registries are
// rebuilt from source documents on every load and never persist.
package protoreg
