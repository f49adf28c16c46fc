package reference

// Brands maps workflow brand values to central-grid codes.
var Brands = []BrandMapping{
	{WorkflowValue: "Disney+ Standalone", CentralGrid: "PLUS", Product: "Disney+", Code: "PLUS"},
	{WorkflowValue: "Bundle", CentralGrid: "DBUN", Product: "Bundle", Code: "DBUN"},
	{WorkflowValue: "Disney", CentralGrid: "DIS", Product: "Disney+", Code: "DIS"},
	{WorkflowValue: "Marvel", CentralGrid: "MAR", Product: "Disney+", Code: "MAR"},
	{WorkflowValue: "Star Wars", CentralGrid: "SW", Product: "Disney+", Code: "SW"},
	{WorkflowValue: "Pixar", CentralGrid: "PIX", Product: "Disney+", Code: "PIX"},
	{WorkflowValue: "National Geographic", CentralGrid: "NG", Product: "Disney+", Code: "NG"},
	{WorkflowValue: "Star", CentralGrid: "STAR", Product: "Star", Code: "STAR"},
	{WorkflowValue: "STAR+", CentralGrid: "STAR+", Product: "Star+", Code: "STAR+"},
	{WorkflowValue: "COMBO+", CentralGrid: "COMBO+", Product: "Combo+", Code: "COMBO+"},
}

// Channels maps workflow channel values to central-grid names and the
// platform combination each channel traffics through.
var Channels = []ChannelMapping{
	{WorkflowValue: "Display Static", CentralGrid: "ProgDisplay", PlatformTax: "CM + DV360"},
	{WorkflowValue: "Display Video", CentralGrid: "ProgVideo", PlatformTax: "CM + DV360"},
	{WorkflowValue: "Display Native", CentralGrid: "ProgNative", PlatformTax: "CM + DV360"},
	{WorkflowValue: "Display Animated", CentralGrid: "ProgDisplay", PlatformTax: "CM + DV360"},
	{WorkflowValue: "Social Static", CentralGrid: "Social", PlatformTax: "Meta/TikTok/Snap"},
	{WorkflowValue: "Social Video", CentralGrid: "Social", PlatformTax: "Meta/TikTok/Snap"},
	{WorkflowValue: "Search", CentralGrid: "Search", PlatformTax: "Google Ads"},
	{WorkflowValue: "CTV", CentralGrid: "ProgCTV", PlatformTax: "CM + DV360"},
	{WorkflowValue: "Audio", CentralGrid: "ProgAudio", PlatformTax: "CM + DV360/Spotify"},
	{WorkflowValue: "YouTube", CentralGrid: "YouTube", PlatformTax: "CM + DV360"},
}

// Audiences is the audience targeting glossary.
var Audiences = []AudienceSegment{
	{Tactic: "Prospecting", Strategy: "Demo", Detailed: "A18+", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Demo", Detailed: "A35-54", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Demo", Detailed: "A18-34", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Demo", Detailed: "A25-34", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Demo", Detailed: "A18-44", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Behavior", Detailed: "Action & Adventure Movie Fans", Source: "3P-Oath"},
	{Tactic: "Prospecting", Strategy: "Behavior", Detailed: "Entertainment Affinity", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Behavior", Detailed: "Sci-Fi Fans", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Behavior", Detailed: "Parents", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Behavior", Detailed: "Gamers Affinity", Source: "3P-GA"},
	{Tactic: "Prospecting", Strategy: "Contextual", Detailed: "NA", Source: "3P-Oath"},
	{Tactic: "Retargeting", Strategy: "Behavior", Detailed: "MLP All", Source: "1P"},
	{Tactic: "Retargeting", Strategy: "Behavior", Detailed: "Churners", Source: "1P"},
	{Tactic: "Retargeting", Strategy: "Behavior", Detailed: "MLP Welcome", Source: "1P"},
	{Tactic: "Retargeting", Strategy: "Behavior", Detailed: "MLP Email", Source: "1P"},
}

// Titles are content releases campaigns promote.
var Titles = []string{
	"Loki Season 3", "Moana Live Action", "Andor Season 2", "The Mandalorian S4",
	"Inside Out 3", "Thunderbolts", "Daredevil Born Again", "Skeleton Crew S2",
	"Ironheart", "Agatha All Along S2", "Percy Jackson S2", "Avatar Fire & Ash",
	"Alien Earth", "The Bear S4", "Only Murders S5", "Bluey Movie",
	"Monsters at Work S3", "Zootopia 2", "Incredibles 3", "Tron Ares",
	"The Fantastic Four", "Captain America Brave New World", "Spider-Man Animated",
	"Star Wars Dawn of the Jedi", "National Geographic Arctic", "ESPN+ UFC 320",
}
