package reference

// Markets is the markets & regions table. Geo plus language identifies a
// market; the cluster groups markets that share a planning team.
var Markets = []Market{
	{Code: "US (ENG)", Geo: "US", Country: "United States", Language: "ENG", Cluster: "US", Region: "North America"},
	{Code: "US (ES)", Geo: "US", Country: "United States", Language: "ES", Cluster: "US", Region: "North America"},
	{Code: "CA (ENG)", Geo: "CA", Country: "Canada", Language: "ENG", Cluster: "CA", Region: "North America"},
	{Code: "CA (FR)", Geo: "CA", Country: "Canada", Language: "FR", Cluster: "CA", Region: "North America"},
	{Code: "GB (ENG-GB)", Geo: "GB", Country: "United Kingdom", Language: "ENG-GB", Cluster: "UKI", Region: "EMEA"},
	{Code: "IE (ENG-GB)", Geo: "IE", Country: "Ireland", Language: "ENG-GB", Cluster: "UKI", Region: "EMEA"},
	{Code: "DE (DE)", Geo: "DE", Country: "Germany", Language: "DE", Cluster: "GSA", Region: "EMEA"},
	{Code: "AT (AT)", Geo: "AT", Country: "Austria", Language: "AT", Cluster: "GSA", Region: "EMEA"},
	{Code: "CH (DE)", Geo: "CH", Country: "Switzerland", Language: "DE", Cluster: "GSA", Region: "EMEA"},
	{Code: "FR (FR)", Geo: "FR", Country: "France", Language: "FR", Cluster: "France", Region: "EMEA"},
	{Code: "ES (ES)", Geo: "ES", Country: "Spain", Language: "ES", Cluster: "Iberia", Region: "EMEA"},
	{Code: "PT (PT)", Geo: "PT", Country: "Portugal", Language: "PT", Cluster: "Iberia", Region: "EMEA"},
	{Code: "IT (IT)", Geo: "IT", Country: "Italy", Language: "IT", Cluster: "Italy", Region: "EMEA"},
	{Code: "NL (DUT)", Geo: "NL", Country: "Netherlands", Language: "DUT", Cluster: "BeNeLux", Region: "EMEA"},
	{Code: "BE (FR)", Geo: "BE", Country: "Belgium", Language: "FR", Cluster: "BeNeLux", Region: "EMEA"},
	{Code: "SE (SV)", Geo: "SE", Country: "Sweden", Language: "SV", Cluster: "Nordics", Region: "EMEA"},
	{Code: "NO (NB)", Geo: "NO", Country: "Norway", Language: "NB", Cluster: "Nordics", Region: "EMEA"},
	{Code: "DK (DA)", Geo: "DK", Country: "Denmark", Language: "DA", Cluster: "Nordics", Region: "EMEA"},
	{Code: "AU (ENG)", Geo: "AU", Country: "Australia", Language: "ENG", Cluster: "AU", Region: "APAC"},
	{Code: "NZ (ENG)", Geo: "NZ", Country: "New Zealand", Language: "ENG", Cluster: "NZ", Region: "APAC"},
	{Code: "SG (ENG)", Geo: "SG", Country: "Singapore", Language: "ENG", Cluster: "SG", Region: "APAC"},
	{Code: "JP (JA)", Geo: "JP", Country: "Japan", Language: "JA", Cluster: "JP", Region: "APAC"},
	{Code: "KR (KO)", Geo: "KR", Country: "Korea", Language: "KO", Cluster: "KR", Region: "APAC"},
	{Code: "TW (ZH)", Geo: "TW", Country: "Taiwan", Language: "ZH", Cluster: "TW", Region: "APAC"},
	{Code: "HK (ZH)", Geo: "HK", Country: "Hong Kong", Language: "ZH", Cluster: "HK", Region: "APAC"},
	{Code: "MX (ES)", Geo: "MX", Country: "Mexico", Language: "ES", Cluster: "MX", Region: "LATAM"},
	{Code: "BR (PT)", Geo: "BR", Country: "Brazil", Language: "PT", Cluster: "BR", Region: "LATAM"},
	{Code: "AR (ES)", Geo: "AR", Country: "Argentina", Language: "ES", Cluster: "AR", Region: "LATAM"},
	{Code: "CL (ES)", Geo: "CL", Country: "Chile", Language: "ES", Cluster: "ClPeCo", Region: "LATAM"},
	{Code: "CO (ES)", Geo: "CO", Country: "Colombia", Language: "ES", Cluster: "ClPeCo", Region: "LATAM"},
}
