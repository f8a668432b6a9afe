package retro

type TemplateType string

const (
	TemplateWhatWentWell      TemplateType = "what-went-well"
	TemplateStartStopContinue TemplateType = "start-stop-continue"
	TemplateMadSadGlad        TemplateType = "mad-sad-glad"
	TemplateFourLs            TemplateType = "4ls"
)

type Template struct {
	Type        TemplateType `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Columns     []string     `json:"columns"`
}

var templates = []Template{
	{
		Type:        TemplateWhatWentWell,
		Name:        "What Went Well",
		Description: "Reflect on positives, improvements, and action items",
		Columns:     []string{"What Went Well", "To Improve", "Action Items"},
	},
	{
		Type:        TemplateStartStopContinue,
		Name:        "Start, Stop, Continue",
		Description: "Identify what to start, stop, and continue doing",
		Columns:     []string{"Start", "Stop", "Continue"},
	},
	{
		Type:        TemplateMadSadGlad,
		Name:        "Mad, Sad, Glad",
		Description: "Express feelings about the project or sprint",
		Columns:     []string{"Mad", "Sad", "Glad"},
	},
	{
		Type:        TemplateFourLs,
		Name:        "4 Ls",
		Description: "Liked, Learned, Lacked, Longed for",
		Columns:     []string{"Liked", "Learned", "Lacked", "Longed For"},
	},
}

// Templates returns the catalogue in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)

	return out
}

func LookupTemplate(t TemplateType) (Template, bool) {
	for _, template := range templates {
		if template.Type == t {
			return template, true
		}
	}

	return Template{}, false
}

func (t TemplateType) Valid() bool {
	_, ok := LookupTemplate(t)

	return ok
}
