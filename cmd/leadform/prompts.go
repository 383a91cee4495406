package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/form"
	"github.com/superabroad/lead-intake/internal/utils"
)

var errAborted = errors.New("lead form aborted")

// prompter abstracts the terminal so the form flow can be tested without one
type prompter interface {
	Select(message string, options []string, defaultIndex int) (int, error)
	Input(message, def string, validate func(string) error) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string, defaultIndex int) (int, error) {
	prompt := &survey.Select{Message: message, Options: options, PageSize: 10}
	if defaultIndex >= 0 && defaultIndex < len(options) {
		prompt.Default = options[defaultIndex]
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(options, out), nil
}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	prompt := &survey.Input{Message: message, Default: def}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	var out string
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

func notBlank(message string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	}
}

func emailShape(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(utils.MsgEmailRequired)
	}
	if !utils.IsEmailShape(strings.TrimSpace(s)) {
		return errors.New(utils.MsgEmailInvalid)
	}
	return nil
}

// fillForm asks for every field, starting from the values the store holds, and
// writes each answer back through SetField.
func fillForm(p prompter, store *form.Store) error {
	catalog := store.Catalog()
	current := store.Snapshot()

	courses := catalog.Courses()
	courseLabels := make([]string, len(courses))
	courseDefault := -1
	for i, c := range courses {
		courseLabels[i] = c.Name
		if c.Code == current.Course {
			courseDefault = i
		}
	}
	idx, err := p.Select("Which course are you interested in?", courseLabels, courseDefault)
	if err != nil {
		return err
	}
	if idx >= 0 {
		if err := store.SetField(form.FieldCourse, courses[idx].Code); err != nil {
			return err
		}
	}

	name, err := p.Input("Full name", current.FullName, notBlank(utils.MsgNameRequired))
	if err != nil {
		return err
	}
	if err := store.SetField(form.FieldFullName, name); err != nil {
		return err
	}

	email, err := p.Input("Email address", current.Email, emailShape)
	if err != nil {
		return err
	}
	if err := store.SetField(form.FieldEmail, strings.TrimSpace(email)); err != nil {
		return err
	}

	codes := catalog.DialingCodes()
	codeLabels := make([]string, len(codes))
	codeDefault := 0
	for i, dc := range codes {
		codeLabels[i] = dialingLabel(dc)
		if dc.Code == current.CountryCode {
			codeDefault = i
		}
	}
	idx, err = p.Select("Country code", codeLabels, codeDefault)
	if err != nil {
		return err
	}
	if idx >= 0 {
		if err := store.SetField(form.FieldCountryCode, codes[idx].Code); err != nil {
			return err
		}
	}

	phone, err := p.Input("Phone number", current.Phone, notBlank(utils.MsgPhoneRequired))
	if err != nil {
		return err
	}
	if err := store.SetField(form.FieldPhone, phone); err != nil {
		return err
	}

	whatsApp, err := p.Confirm("Can we reach you on WhatsApp at this number?", current.UseWhatsApp)
	if err != nil {
		return err
	}
	if err := store.SetField(form.FieldUseWhatsApp, whatsApp); err != nil {
		return err
	}

	terms, err := p.Confirm("I agree to the terms and conditions and privacy policy", current.AgreeTerms)
	if err != nil {
		return err
	}
	return store.SetField(form.FieldAgreeTerms, terms)
}

func dialingLabel(dc config.DialingCode) string {
	return fmt.Sprintf("%s %s %s", dc.Flag, dc.Code, dc.Country)
}
