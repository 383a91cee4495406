package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Course is a selectable course of interest
type Course struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// DialingCode is a selectable international dialing prefix
type DialingCode struct {
	Code    string `yaml:"code" json:"code"`
	Country string `yaml:"country" json:"country"`
	Flag    string `yaml:"flag" json:"flag"`
}

type catalogFile struct {
	DefaultCountryCode string        `yaml:"default_country_code"`
	Courses            []Course      `yaml:"courses"`
	DialingCodes       []DialingCode `yaml:"dialing_codes"`
}

// Catalog is the fixed reference data behind the lead form: the course list and
// the ordered list of dialing codes. It cannot be modified after construction;
// accessors return copies.
type Catalog struct {
	defaultCountryCode string
	courses            []Course
	dialingCodes       []DialingCode
	courseNames        map[string]string
	dialingIndex       map[string]struct{}
}

var defaultCatalog = mustParseCatalog(embeddedCatalog)

// DefaultCatalog returns the catalog compiled into the binary
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// ParseCatalog parses a YAML catalog document and checks its invariants
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	if len(file.Courses) == 0 {
		return nil, errors.New("invalid catalog: no courses")
	}
	if len(file.DialingCodes) == 0 {
		return nil, errors.New("invalid catalog: no dialing codes")
	}

	c := &Catalog{
		defaultCountryCode: strings.TrimSpace(file.DefaultCountryCode),
		courses:            make([]Course, 0, len(file.Courses)),
		dialingCodes:       make([]DialingCode, 0, len(file.DialingCodes)),
		courseNames:        make(map[string]string, len(file.Courses)),
		dialingIndex:       make(map[string]struct{}, len(file.DialingCodes)),
	}

	for _, course := range file.Courses {
		if course.Code == "" {
			return nil, errors.New("invalid catalog: course without code")
		}
		if _, dup := c.courseNames[course.Code]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate course %q", course.Code)
		}
		c.courseNames[course.Code] = course.Name
		c.courses = append(c.courses, course)
	}

	for _, dc := range file.DialingCodes {
		if !strings.HasPrefix(dc.Code, "+") || len(dc.Code) < 2 {
			return nil, fmt.Errorf("invalid catalog: malformed dialing code %q", dc.Code)
		}
		if _, dup := c.dialingIndex[dc.Code]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate dialing code %q", dc.Code)
		}
		c.dialingIndex[dc.Code] = struct{}{}
		c.dialingCodes = append(c.dialingCodes, dc)
	}

	if _, ok := c.dialingIndex[c.defaultCountryCode]; !ok {
		return nil, fmt.Errorf("invalid catalog: default country code %q is not listed", c.defaultCountryCode)
	}

	return c, nil
}

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCountryCode returns the dialing code selected on a fresh form
func (c *Catalog) DefaultCountryCode() string {
	return c.defaultCountryCode
}

// Courses returns the courses in display order
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// DialingCodes returns the dialing codes in display order
func (c *Catalog) DialingCodes() []DialingCode {
	out := make([]DialingCode, len(c.dialingCodes))
	copy(out, c.dialingCodes)
	return out
}

// HasCourse reports whether code is a known course
func (c *Catalog) HasCourse(code string) bool {
	_, ok := c.courseNames[code]
	return ok
}

// HasDialingCode reports whether code is a known dialing code
func (c *Catalog) HasDialingCode(code string) bool {
	_, ok := c.dialingIndex[code]
	return ok
}

// CourseName returns the display name for a course code. Unknown codes are
// returned as-is and an empty code yields "Not specified".
func (c *Catalog) CourseName(code string) string {
	if code == "" {
		return "Not specified"
	}
	if name, ok := c.courseNames[code]; ok {
		return name
	}
	return code
}
