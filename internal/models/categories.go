package models

const (
	CategorySports     = "Sports"
	CategoryMusic      = "Music"
	CategoryArt        = "Art"
	CategoryFood       = "Food"
	CategoryTechnology = "Technology"
	CategoryGaming     = "Gaming"
	CategoryOutdoors   = "Outdoors"
	CategoryEducation  = "Education"
	CategorySocial     = "Social"
	CategoryOther      = "Other"
)

var Categories = []string{
	CategorySports,
	CategoryMusic,
	CategoryArt,
	CategoryFood,
	CategoryTechnology,
	CategoryGaming,
	CategoryOutdoors,
	CategoryEducation,
	CategorySocial,
	CategoryOther,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// NormalizeCategories drops blanks and duplicates, keeping first-seen order.
func NormalizeCategories(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
