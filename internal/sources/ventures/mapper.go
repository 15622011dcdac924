package ventures

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
)

// SourceCatalogue tags ventures discovered from the catalogue file.
const SourceCatalogue = "catalogue"

// Mapper converts catalogue entries to domain.Venture entities.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapVentures validates the catalogue and converts it, preserving order.
// Invalid entries are skipped; an empty result is an error.
func (m *Mapper) MapVentures(catalogue *CatalogueFile) ([]*domain.Venture, []error) {
	if catalogue == nil {
		return nil, []error{fmt.Errorf("empty ventures catalogue")}
	}

	var (
		ventures []*domain.Venture
		problems []error
	)
	seen := make(map[string]bool, len(catalogue.Ventures))
	now := time.Now()

	for i, props := range catalogue.Ventures {
		v, err := mapVenture(props, now)
		if err != nil {
			problems = append(problems, fmt.Errorf("venture #%d: %w", i+1, err))
			continue
		}
		if seen[v.ID] {
			problems = append(problems, fmt.Errorf("venture #%d: duplicate id %q", i+1, v.ID))
			continue
		}
		seen[v.ID] = true
		v.Position = len(ventures)
		ventures = append(ventures, v)
	}

	if len(ventures) == 0 {
		problems = append(problems, fmt.Errorf("no valid ventures found in catalogue"))
	}

	return ventures, problems
}

func mapVenture(props VentureProps, now time.Time) (*domain.Venture, error) {
	name := strings.TrimSpace(props.Name)
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}

	id := Slug(props.ID)
	if id == "" {
		id = Slug(name)
	}
	if id == "" {
		return nil, fmt.Errorf("cannot derive id from %q", name)
	}

	href := strings.TrimSpace(props.Href)
	internalPath := strings.TrimSpace(props.InternalPath)

	switch {
	case href == "" && internalPath == "":
		return nil, fmt.Errorf("%s: needs href or internalPath", id)
	case href != "" && internalPath != "":
		return nil, fmt.Errorf("%s: href and internalPath are exclusive", id)
	case href != "":
		// Outbound links carry the referral, so the destination must be absolute.
		u, err := url.Parse(href)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("%s: href %q is not an absolute url", id, href)
		}
	case !strings.HasPrefix(internalPath, "/"):
		return nil, fmt.Errorf("%s: internalPath %q must start with /", id, internalPath)
	}

	return &domain.Venture{
		ID:           id,
		Name:         name,
		LogoURL:      strings.TrimSpace(props.Logo),
		Href:         href,
		InternalPath: internalPath,
		ComingSoon:   props.ComingSoon,
		Sources:      []string{SourceCatalogue},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Slug lowercases s and collapses everything but letters and digits to "-".
// Example: "Tours and Travels" -> "tours-and-travels"
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
