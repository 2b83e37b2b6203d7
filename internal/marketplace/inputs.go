package marketplace

import (
	"errors"
	"slices"
	"strings"

	"github.com/onedesigner/onedesigner/core/validator"
	"github.com/onedesigner/onedesigner/internal/matching"
)

// RegisterClientInput is the client sign-up form.
type RegisterClientInput struct {
	Email   string `json:"email" validate:"required;email"`
	Name    string `json:"name" validate:"required;max:120"`
	Company string `json:"company" validate:"max:120"`
}

func (in *RegisterClientInput) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
}

// DesignerApplication is the designer sign-up form.
type DesignerApplication struct {
	Email           string   `json:"email" validate:"required;email"`
	FirstName       string   `json:"first_name" validate:"required;max:80"`
	LastName        string   `json:"last_name" validate:"required;max:80"`
	Title           string   `json:"title" validate:"required;max:120"`
	City            string   `json:"city" validate:"max:80"`
	Country         string   `json:"country" validate:"max:80"`
	Timezone        string   `json:"timezone" validate:"max:64"`
	YearsExperience int      `json:"years_experience" validate:"min:0;max:60"`
	Styles          []string `json:"styles" validate:"required;max:10"`
	Industries      []string `json:"industries" validate:"required;max:10"`
	ProjectTypes    []string `json:"project_types" validate:"required;max:10"`
	Tools           []string `json:"tools" validate:"max:20"`
	Availability    string   `json:"availability" validate:"required"`
	HourlyRateMin   int      `json:"hourly_rate_min" validate:"min:0"`
	HourlyRateMax   int      `json:"hourly_rate_max" validate:"min:0"`
	PortfolioURL    string   `json:"portfolio_url" validate:"url"`
	Bio             string   `json:"bio" validate:"max:2000"`
	Phone           string   `json:"phone" validate:"max:32"`
}

func (in *DesignerApplication) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Title = strings.TrimSpace(in.Title)
	in.Availability = strings.ToLower(strings.TrimSpace(in.Availability))
	in.Styles = normalizeList(in.Styles)
	in.Industries = normalizeList(in.Industries)
	in.ProjectTypes = normalizeList(in.ProjectTypes)
	in.Tools = normalizeList(in.Tools)
}

func (in *DesignerApplication) validate() error {
	rules := []validator.Rule{
		validator.OneOf("availability", in.Availability, matching.Availabilities...),
	}
	if in.HourlyRateMax > 0 {
		rules = append(rules, validator.LessOrEqual("hourly_rate_min", in.HourlyRateMin, in.HourlyRateMax))
	}
	return validate(in, rules...)
}

// BriefInput is the project brief form.
type BriefInput struct {
	ProjectType       string   `json:"project_type" validate:"required;max:80"`
	Industry          string   `json:"industry" validate:"required;max:80"`
	Styles            []string `json:"styles" validate:"required;max:10"`
	Timeline          string   `json:"timeline" validate:"required"`
	BudgetMin         int      `json:"budget_min" validate:"min:0"`
	BudgetMax         int      `json:"budget_max" validate:"min:0"`
	Description       string   `json:"description" validate:"max:5000"`
	RequiredTools     []string `json:"required_tools" validate:"max:20"`
	PreferredTimezone string   `json:"preferred_timezone" validate:"max:64"`
}

func (in *BriefInput) normalize() {
	in.ProjectType = strings.ToLower(strings.TrimSpace(in.ProjectType))
	in.Industry = strings.ToLower(strings.TrimSpace(in.Industry))
	in.Timeline = strings.ToLower(strings.TrimSpace(in.Timeline))
	in.Description = strings.TrimSpace(in.Description)
	in.Styles = normalizeList(in.Styles)
	in.RequiredTools = normalizeList(in.RequiredTools)
}

func (in *BriefInput) validate() error {
	rules := []validator.Rule{
		validator.OneOf("timeline", in.Timeline, matching.Timelines...),
	}
	if in.BudgetMax > 0 {
		rules = append(rules, validator.LessOrEqual("budget_min", in.BudgetMin, in.BudgetMax))
	}
	return validate(in, rules...)
}

// validate merges struct tag failures with extra rules into one ValidationErrors.
func validate(in any, rules ...validator.Rule) error {
	var errs validator.ValidationErrors
	for _, err := range []error{validator.ValidateStruct(in), validator.Apply(rules...)} {
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		errs = append(errs, verrs...)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeList lowercases, trims and dedupes tags, dropping empty ones.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" && !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}
