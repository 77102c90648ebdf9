package screen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Item is one document as the server returned it.
type Item map[string]any

func (it Item) ID() string {
	id, _ := it["_id"].(string)
	return id
}

// Text renders a field for display. Dotted names reach into populated
// references, e.g. "modelo_idmodelo.folio".
func (it Item) Text(field string) string {
	var v any = map[string]any(it)
	for _, part := range strings.Split(field, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v = m[part]
	}
	return text(v)
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		id, _ := t["_id"].(string)
		return id
	default:
		return fmt.Sprint(t)
	}
}

// Form is the value bag bound to the create/edit form.
type Form map[string]any

var serverFields = map[string]bool{"_id": true, "createdAt": true, "updatedAt": true, "__v": true}

// Screen holds the state of one management screen: the fetched list, the
// related list used by the form's select, and the form itself.
type Screen struct {
	Config

	client *Client

	Items     []Item
	Options   []Item
	Form      Form
	EditingID string
	Err       string
	Loading   bool
}

func New(client *Client, cfg Config) *Screen {
	return &Screen{Config: cfg, client: client, Form: Form{}}
}

// Load fetches the list and, when configured, the related list. Both
// requests run concurrently and the screen stays Loading until both end.
func (s *Screen) Load(ctx context.Context) error {
	s.Loading = true
	defer func() { s.Loading = false }()

	var items, options []Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.client.List(gctx, s.Resource, nil)
		return err
	})
	if s.Related != "" {
		g.Go(func() error {
			var err error
			options, err = s.client.List(gctx, s.Related, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.Err = messageOf(err, "Error al cargar "+s.Title)
		return err
	}

	s.Items = items
	s.Options = options
	s.Err = ""
	return nil
}

// Submit creates or updates depending on EditingID, then resets the form and
// reloads. On failure the form keeps its values.
func (s *Screen) Submit(ctx context.Context) error {
	var err error
	if s.EditingID == "" {
		_, err = s.client.Create(ctx, s.Resource, s.Form)
	} else {
		_, err = s.client.Update(ctx, s.Resource, s.EditingID, s.Form)
	}
	if err != nil {
		s.Err = messageOf(err, "Error al guardar")
		return err
	}
	s.Reset()
	return s.Load(ctx)
}

// Edit copies an item into the form and switches to edit mode.
func (s *Screen) Edit(item Item) {
	form := Form{}
	for k, v := range item {
		if serverFields[k] {
			continue
		}
		if ref, ok := v.(map[string]any); ok {
			v = ref["_id"]
		}
		form[k] = v
	}
	s.Form = form
	s.EditingID = item.ID()
}

func (s *Screen) Reset() {
	s.Form = Form{}
	s.EditingID = ""
	s.Err = ""
}

// Delete asks confirm first and only removes the document when it agrees.
// It reports whether a delete was issued.
func (s *Screen) Delete(ctx context.Context, id string, confirm func(prompt string) bool) (bool, error) {
	if !confirm(s.ConfirmPrompt) {
		return false, nil
	}
	if err := s.client.Delete(ctx, s.Resource, id); err != nil {
		s.Err = messageOf(err, "Error al eliminar")
		return true, err
	}
	return true, s.Load(ctx)
}

// Filter narrows the fetched items locally; Items is left untouched.
func (s *Screen) Filter(term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.Items
	}
	out := []Item{}
	for _, it := range s.Items {
		for _, field := range s.searchFields(it) {
			if strings.Contains(strings.ToLower(it.Text(field)), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func (s *Screen) searchFields(it Item) []string {
	if len(s.SearchFields) > 0 {
		return s.SearchFields
	}
	fields := make([]string, 0, len(it))
	for k, v := range it {
		if _, ok := v.(string); ok && !serverFields[k] {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	return fields
}

// Row renders an item as the screen's table columns.
func (s *Screen) Row(it Item) []string {
	row := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		row[i] = it.Text(c)
	}
	return row
}

// OptionLabel resolves a related id to the related document's name.
func (s *Screen) OptionLabel(id string) string {
	for _, o := range s.Options {
		if o.ID() == id {
			if name := o.Text("nombre"); name != "" {
				return name
			}
			return o.Text("folio")
		}
	}
	return ""
}

func messageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
