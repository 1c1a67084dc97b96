// Package all importa todos los drivers para auto-registro.
//
// Uso:
//
//	import _ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/all"
package all

import (
	_ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/kratos"
	_ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/supabase"
)
