package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"nexora/internal/auth"
	"nexora/internal/models"
)

// FormState is the lifecycle position of an AdminForm.
type FormState int

const (
	StateEditing FormState = iota
	StateSubmitting
	StateIdle
)

func (s FormState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateIdle:
		return "idle"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

// Form field names accepted by AdminForm.Set.
const (
	FieldName     = "name"
	FieldGender   = "gender"
	FieldPrice    = "price"
	FieldOldPrice = "oldPrice"
	FieldImage    = "image"
)

// FormDraft holds the raw, unparsed inputs of the add-product form.
type FormDraft struct {
	Name     string
	Gender   string
	Price    string
	OldPrice string
	Image    string
}

// AdminForm drives the add-product form: it validates the draft, submits
// it through the Catalog and tracks whether a submission is in flight.
type AdminForm struct {
	catalog *Catalog
	session *auth.State

	mu    sync.Mutex
	draft FormDraft
	state FormState
}

// NewAdminForm creates a form that submits to catalog on behalf of the user
// signed in to session.
func NewAdminForm(catalog *Catalog, session *auth.State) *AdminForm {
	return &AdminForm{catalog: catalog, session: session, state: StateEditing}
}

// Set updates one draft field.
func (f *AdminForm) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	switch field {
	case FieldName:
		f.draft.Name = value
	case FieldGender:
		f.draft.Gender = value
	case FieldPrice:
		f.draft.Price = value
	case FieldOldPrice:
		f.draft.OldPrice = value
	case FieldImage:
		f.draft.Image = value
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown field %q", field)}
	}
	f.state = StateEditing
	return nil
}

// Submit validates the draft and adds it to the catalog. The draft is
// cleared only when the store accepts it.
func (f *AdminForm) Submit(ctx context.Context) (*models.Product, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if f.session == nil || !f.session.SignedIn() {
		f.mu.Unlock()
		return nil, ErrSignedOut
	}
	draft, err := f.draft.parse()
	if err != nil {
		f.state = StateEditing
		f.mu.Unlock()
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	product, err := f.catalog.Add(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	if err != nil {
		return nil, err
	}
	f.draft = FormDraft{}
	return product, nil
}

// State returns the form's current state.
func (f *AdminForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the raw inputs.
func (f *AdminForm) Draft() FormDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (d FormDraft) parse() (models.ProductDraft, error) {
	required := []struct{ field, value string }{
		{FieldName, d.Name},
		{FieldGender, d.Gender},
		{FieldPrice, d.Price},
		{FieldImage, d.Image},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.ProductDraft{}, &ValidationError{
				Field:   r.field,
				Message: fmt.Sprintf("Please fill all required fields: %s is missing", r.field),
			}
		}
	}

	price, err := ParsePrice(FieldPrice, d.Price)
	if err != nil {
		return models.ProductDraft{}, err
	}
	oldPrice, err := ParseOptionalPrice(FieldOldPrice, d.OldPrice)
	if err != nil {
		return models.ProductDraft{}, err
	}

	draft := models.ProductDraft{
		Name:     d.Name,
		Gender:   d.Gender,
		Price:    price,
		OldPrice: oldPrice,
		Image:    d.Image,
	}.Normalize()
	if err := ValidateDraft(draft); err != nil {
		return models.ProductDraft{}, err
	}
	return draft, nil
}
