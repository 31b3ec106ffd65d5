package catalog

import "fmt"

// Canonical filter names.
const (
	FilterPrimaryCategory = "primaryCategory"
	FilterVisibility      = "visibility"
	FilterBoards          = "se_boards"
	FilterGradeLevels     = "se_gradeLevels"
	FilterMediums         = "se_mediums"
	FilterSubjects        = "se_subjects"
	FilterAudience        = "audience"
)

// defaultAliases lets callers use the non-prefixed backend names.
var defaultAliases = map[string]string{
	"board":      FilterBoards,
	"gradeLevel": FilterGradeLevels,
	"medium":     FilterMediums,
	"subject":    FilterSubjects,
}

func classes(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("Class %d", i))
	}
	return out
}

// Default returns the catalog for the production content platform.
func Default() *Catalog {
	c, err := New(
		map[string][]string{
			FilterPrimaryCategory: {"Digital Textbook", "eTextbook"},
			FilterVisibility:      {"Default", "Parent"},
			FilterBoards:          {"CBSE", "State (Andhra Pradesh)"},
			FilterGradeLevels:     classes(1, 12),
			FilterMediums:         {"English", "Hindi"},
			FilterSubjects: {
				"Kannada", "English", "Hindi", "Mathematics", "Physical Science", "Biology",
				"History", "Geography", "Civics", "Economics", "Environmental Studies",
				"Health & Physical Education", "Computer Applications",
				"Art & Cultural Education - Music", "Drawing",
			},
			FilterAudience: {"Student", "Teacher"},
		},
		defaultAliases,
		[]string{
			"name", "appIcon", "mimeType", "gradeLevel", "identifier", "medium", "pkgVersion",
			"board", "subject", "resourceType", "primaryCategory", "contentType", "channel",
			"organisation", "trackable", "se_boards", "se_subjects", "se_mediums", "se_gradeLevels",
			"me_averageRating", "me_totalRatingsCount", "me_totalPlaySessionCount",
		},
		[]string{"se_boards", "se_gradeLevels", "se_subjects", "se_mediums", "primaryCategory"},
	)
	if err != nil {
		panic("catalog: invalid default catalog: " + err.Error())
	}
	return c
}

// Sandbox returns the catalog for the sandbox environment.
// Its "subject" is a real filter there, so only the other aliases apply.
func Sandbox() *Catalog {
	c, err := New(
		map[string][]string{
			"subject":             {"english", "hindi"},
			FilterAudience:        {"Other", "Parent", "School head OR Officials", "Student", "Teacher"},
			"status":              {"Live"},
			"contentType":         {"Course"},
			FilterPrimaryCategory: {"Course", "Course Assessment"},
			FilterBoards:          {"CBSE"},
			FilterGradeLevels:     classes(1, 4),
			FilterMediums:         {"English", "Hindi", "Tamil", "Telugu"},
			"creator":             {"content creator"},
			"organisation":        {"sunbird org"},
		},
		map[string]string{
			"board":      FilterBoards,
			"gradeLevel": FilterGradeLevels,
			"medium":     FilterMediums,
		},
		[]string{
			"name", "appIcon", "mimeType", "gradeLevel", "identifier", "medium", "pkgVersion",
			"board", "subject", "resourceType", "contentType", "channel", "organisation",
			"trackable", "se_boards", "se_subjects", "se_mediums", "se_gradeLevels", "creator",
		},
		[]string{"se_subjects", "creator", "organisation"},
	)
	if err != nil {
		panic("catalog: invalid sandbox catalog: " + err.Error())
	}
	return c
}
