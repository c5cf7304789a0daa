package normalize

import "strings"

// site describes the zonal and warehouse behind a lot-number location code.
type site struct {
	Zonal     string
	Warehouse string
}

// siteCodes maps the 4-letter location codes embedded in lot numbers (two
// letters plus "SJ") to their zonal sites.
var siteCodes = map[string]site{
	"ARSJ": {"Arica", "ARSJ"},
	"IQSJ": {"Iquique", "IQSJ"},
	"CLSJ": {"Calama", "CLSJ"},
	"ANSJ": {"Antofagasta", "ANSJ"},
	"CPSJ": {"Copiapó", "CPSJ"},
	"LSSJ": {"La Serena", "LSSJ"},
	"FLSJ": {"San Felipe", "FLSJ"},
	"VMSJ": {"Viña del Mar", "VMSJ"},
	"SASJ": {"San Antonio", "SASJ"},
	"RGSJ": {"Rancagua", "RGSJ"},
	"SFSJ": {"San Fernando", "SFSJ"},
	"TLSJ": {"Talca", "TLSJ"},
	"CHSJ": {"Chillán", "CHSJ"},
	"CNSJ": {"Concepción", "CNSJ"},
	"LASJ": {"Los Ángeles", "LASJ"},
	"TMSJ": {"Temuco", "TMSJ"},
	"OSSJ": {"Osorno", "OSSJ"},
	"PMSJ": {"Puerto Montt", "PMSJ"},
	"CYSJ": {"Coyhaique", "CYSJ"},
	"PASJ": {"Punta Arenas", "PASJ"},
}

// SiteFromLot extracts the zonal site encoded in a lot number. Best-effort
// enrichment only; callers must not treat it as authoritative.
func SiteFromLot(lot string) (zonal, warehouse string, ok bool) {
	lotUpper := strings.ToUpper(strings.TrimSpace(lot))
	if lotUpper == "" {
		return "", "", false
	}
	for code, s := range siteCodes {
		if strings.Contains(lotUpper, code) {
			return s.Zonal, s.Warehouse, true
		}
	}
	return "", "", false
}
