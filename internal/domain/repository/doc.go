// Package repository define los contratos de dominio del provisioning.
//
// Las interfaces representan capacidades del backend (auth + base de datos),
// independientes de la implementación concreta (Supabase, Kratos, PostgreSQL).
// Las implementaciones viven en internal/store/v2/adapters/.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Los adapters envuelven errores con los sentinels de errors.go
//   - Ningún repositorio conoce el workflow; el orden lo impone el service
package repository
