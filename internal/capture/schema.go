package capture

// Slot names the lead record field a form field fills.
type Slot string

const (
	SlotName     Slot = "name"
	SlotPhone    Slot = "phone"
	SlotTelegram Slot = "telegram"
)

// Kind tells the renderer which input control to draw.
type Kind string

const (
	KindText   Kind = "text"
	KindTel    Kind = "tel"
	KindSelect Kind = "select"
)

// Field is one visitor input. Every field is required.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Slot        Slot
	Kind        Kind
	Options     []string
	// Default is the value a fresh or dismissed form starts with.
	Default string
}

func (f Field) allows(value string) bool {
	if f.Kind != KindSelect || value == "" {
		return true
	}
	for _, opt := range f.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Schema parameterises a capture form: what to ask and how to tag the lead.
type Schema struct {
	ID     string
	Title  string
	Source string
	// Modal forms live in a dialog that is opened and dismissed.
	Modal          bool
	Fields         []Field
	Acknowledgment string
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

const (
	FormHero    = "hero"
	FormCatalog = "catalog"
	FormSteps   = "steps"
	FormBottom  = "bottom"
)

// ModelOptions are the selections offered by the bottom form.
var ModelOptions = []string{"Sonata DN8", "Kia K5", "Консультация"}

const defaultAcknowledgment = "Спасибо за заявку! Наш менеджер свяжется с вами в течение 1 часа"

func contactFields() []Field {
	return []Field{
		{Name: "name", Label: "Имя", Placeholder: "Ваше имя", Slot: SlotName, Kind: KindText},
		{Name: "phone", Label: "Телефон", Placeholder: "+7 (999) 999-99-99", Slot: SlotPhone, Kind: KindTel},
		{Name: "telegram", Label: "Telegram", Placeholder: "@username", Slot: SlotTelegram, Kind: KindText},
	}
}

// Schemas returns the four lead forms placed on the landing page.
func Schemas() []Schema {
	return []Schema{
		{
			ID:             FormHero,
			Title:          "Получить расчет",
			Source:         "Hero - Получить расчет",
			Modal:          true,
			Fields:         contactFields(),
			Acknowledgment: defaultAcknowledgment,
		},
		{
			ID:             FormCatalog,
			Title:          "Заявка на автомобиль",
			Source:         "Каталог - Карточка авто",
			Modal:          true,
			Fields:         contactFields(),
			Acknowledgment: defaultAcknowledgment,
		},
		{
			ID:             FormSteps,
			Title:          "Забронировать квоту",
			Source:         "Этапы - Забронировать",
			Modal:          true,
			Fields:         contactFields(),
			Acknowledgment: defaultAcknowledgment,
		},
		{
			ID:     FormBottom,
			Title:  "Получить расчет",
			Source: "Форма внизу - Получить расчет",
			Fields: []Field{
				{Name: "name", Label: "Имя", Placeholder: "Имя", Slot: SlotName, Kind: KindText},
				{Name: "phone", Label: "Телефон", Placeholder: "Телефон", Slot: SlotPhone, Kind: KindTel},
				{Name: "model", Label: "Модель", Slot: SlotTelegram, Kind: KindSelect, Options: ModelOptions, Default: ModelOptions[0]},
			},
			Acknowledgment: defaultAcknowledgment,
		},
	}
}
