package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"browsekit/lib/htmlutil"
)

// Forms returns every form found in the current page, in document order.
func (s *Session) Forms() []*goquery.Selection {
	return s.forms
}

// Form returns the form at the given index, nil when out of range.
func (s *Session) Form(index int) *goquery.Selection {
	if index < 0 || index >= len(s.forms) {
		return nil
	}
	return s.forms[index]
}

// FormByID returns the first form with the given id attribute, nil when no
// form matches.
func (s *Session) FormByID(id string) *goquery.Selection {
	for _, form := range s.forms {
		if form.AttrOr("id", "") == id {
			return form
		}
	}
	return nil
}

// SelectedForm returns the currently selected form, nil when none is.
func (s *Session) SelectedForm() *goquery.Selection {
	return s.selected
}

// SelectForm selects the form at the given index and seeds the parameter
// map from its named input fields, later duplicates overwriting earlier
// ones. Out of range indices clear the selection and return false.
func (s *Session) SelectForm(index int) bool {
	s.selected = nil
	s.formParams = map[string]string{}
	if index < 0 || index >= len(s.forms) {
		return false
	}

	s.selected = s.forms[index]
	s.selected.Find("input").Each(func(_ int, field *goquery.Selection) {
		name := field.AttrOr("name", "")
		if name == "" {
			return
		}
		s.formParams[name] = field.AttrOr("value", "")
	})
	return true
}

// SelectFormByAttr selects the first form whose given attribute equals the
// given value exactly, returning false when no form matches.
func (s *Session) SelectFormByAttr(name, value string) bool {
	for index, form := range s.forms {
		if form.AttrOr(name, "") == value {
			return s.SelectForm(index)
		}
	}
	return false
}

// FormInputFields returns the input fields of the selected form, nil when
// no form is selected.
func (s *Session) FormInputFields() *goquery.Selection {
	if s.selected == nil {
		return nil
	}
	return s.selected.Find("input")
}

// SetFormParam assigns a value to a parameter of the selected form. It is a
// no-op when no form is selected.
func (s *Session) SetFormParam(name, value string) {
	if s.selected == nil {
		return
	}
	s.formParams[name] = value
}

// FormParam returns the value assigned to a parameter of the selected form.
func (s *Session) FormParam(name string) string {
	return s.formParams[name]
}

// FormParams returns the live parameter map of the selected form.
func (s *Session) FormParams() map[string]string {
	return s.formParams
}

// FormAttrs returns the attributes of the selected form, nil when no form
// is selected.
func (s *Session) FormAttrs() map[string]string {
	if s.selected == nil {
		return nil
	}
	attrs := map[string]string{}
	for _, attr := range s.selected.Nodes[0].Attr {
		attrs[attr.Key] = attr.Val
	}
	return attrs
}

// FormSatisfied reports whether a form is selected and every one of its
// parameters has a non-empty value.
func (s *Session) FormSatisfied() bool {
	if s.selected == nil || len(s.formParams) == 0 {
		return false
	}
	for _, value := range s.formParams {
		if value == "" {
			return false
		}
	}
	return true
}

// SubmitForm submits the selected form with the current parameter map. The
// form's action is resolved against the current page, falling back to the
// page URL when empty; only get and post submission methods are accepted.
// Submission is a full navigation with all of Open's side effects.
func (s *Session) SubmitForm(ctx context.Context) error {
	if s.selected == nil {
		return ErrNoFormSelected
	}

	action := htmlutil.AbsoluteURL(s.doc.Url, s.selected.AttrOr("action", ""))
	if action == "" {
		action = s.pageURL
	}

	method := strings.ToLower(s.selected.AttrOr("method", ""))
	switch method {
	case "post":
		return s.OpenWithData(ctx, action, http.MethodPost, s.formParams)
	case "get":
		return s.OpenWithData(ctx, action, http.MethodGet, s.formParams)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
}
