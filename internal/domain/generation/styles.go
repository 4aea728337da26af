package generation

import "strings"

// ResumeStyle is a named visual direction for a generated resume.
type ResumeStyle string

const (
	StyleModernMinimal       ResumeStyle = "modern_minimal"
	StyleCreativeColorful    ResumeStyle = "creative_colorful"
	StyleProfessionalElegant ResumeStyle = "professional_elegant"
	StyleTechInnovative      ResumeStyle = "tech_innovative"
)

// StyleDescriptor describes how a style should look.
type StyleDescriptor struct {
	Style       ResumeStyle `json:"style"`
	HeaderStyle string      `json:"header_style"`
	ColorScheme string      `json:"color_scheme"`
	Layout      string      `json:"layout"`
	Typography  string      `json:"typography"`
}

var styles = map[ResumeStyle]StyleDescriptor{
	StyleModernMinimal: {
		Style:       StyleModernMinimal,
		HeaderStyle: "Clean, minimal design with subtle gradients",
		ColorScheme: "Monochromatic with accent colors",
		Layout:      "Single column with lots of white space",
		Typography:  "Clean sans-serif fonts",
	},
	StyleCreativeColorful: {
		Style:       StyleCreativeColorful,
		HeaderStyle: "Bold, colorful design with geometric shapes",
		ColorScheme: "Vibrant colors with gradients",
		Layout:      "Two-column with creative sidebar",
		Typography:  "Mix of modern and creative fonts",
	},
	StyleProfessionalElegant: {
		Style:       StyleProfessionalElegant,
		HeaderStyle: "Elegant design with sophisticated styling",
		ColorScheme: "Professional blues and grays",
		Layout:      "Traditional with modern touches",
		Typography:  "Classic serif and modern sans-serif",
	},
	StyleTechInnovative: {
		Style:       StyleTechInnovative,
		HeaderStyle: "Tech-focused with digital elements",
		ColorScheme: "Dark themes with neon accents",
		Layout:      "Grid-based with tech elements",
		Typography:  "Modern tech fonts",
	},
}

// ParseResumeStyle accepts "tech_innovative" as well as "Tech Innovative".
// Unknown values become modern_minimal.
func ParseResumeStyle(s string) ResumeStyle {
	key := ResumeStyle(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if _, ok := styles[key]; ok {
		return key
	}
	return StyleModernMinimal
}

// Describe returns the descriptor for the style.
func (s ResumeStyle) Describe() StyleDescriptor {
	if d, ok := styles[s]; ok {
		return d
	}
	return styles[StyleModernMinimal]
}
