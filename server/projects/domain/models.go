package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusCompleted = "completed"

	CategoryBefore = "before"
	CategoryAfter  = "after"
)

func ValidCategory(category string) bool {
	return category == CategoryBefore || category == CategoryAfter
}

// Photos is the nested reference map: category -> spaceId -> shotId -> url.
// At most one live URL per (category, spaceId, shotId); re-upload
// overwrites, delete removes the key.
type Photos map[string]map[string]map[string]string

func (p Photos) Get(category, spaceID, shotID string) (string, bool) {
	url, ok := p[category][spaceID][shotID]
	return url, ok
}

func (p Photos) Set(category, spaceID, shotID, url string) {
	space, ok := p[category]
	if !ok {
		space = map[string]map[string]string{}
		p[category] = space
	}
	shots, ok := space[spaceID]
	if !ok {
		shots = map[string]string{}
		space[spaceID] = shots
	}
	shots[shotID] = url
}

func (p Photos) Delete(category, spaceID, shotID string) {
	delete(p[category][spaceID], shotID)
}

const (
	StylingKindLegacy = "legacy"
	StylingKindStyled = "styled"
)

// StylingRecord is a stored styling result. Old records are bare URL
// strings; newer ones carry the original photo, the styled output and the
// style used. The discriminant is decided here, at the storage boundary,
// and nowhere else.
type StylingRecord struct {
	Kind      string
	URL       string // legacy only
	Original  string
	Styled    string
	Style     string
	CreatedAt string
}

type stylingRecordJSON struct {
	OriginalPhoto string `json:"originalPhoto"`
	StyledPhoto   string `json:"styledPhoto"`
	Style         string `json:"style"`
	CreatedAt     string `json:"createdAt"`
}

func (r *StylingRecord) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*r = StylingRecord{Kind: StylingKindLegacy, URL: legacy}
		return nil
	}
	var styled stylingRecordJSON
	if err := json.Unmarshal(data, &styled); err != nil {
		return err
	}
	*r = StylingRecord{
		Kind:      StylingKindStyled,
		Original:  styled.OriginalPhoto,
		Styled:    styled.StyledPhoto,
		Style:     styled.Style,
		CreatedAt: styled.CreatedAt,
	}
	return nil
}

func (r StylingRecord) MarshalJSON() ([]byte, error) {
	if r.Kind == StylingKindLegacy {
		return json.Marshal(r.URL)
	}
	return json.Marshal(stylingRecordJSON{
		OriginalPhoto: r.Original,
		StyledPhoto:   r.Styled,
		Style:         r.Style,
		CreatedAt:     r.CreatedAt,
	})
}

type Project struct {
	OwnerID     string                   `json:"-"`
	ProjectID   string                   `json:"projectId"`
	ProjectName string                   `json:"projectName"`
	Location    string                   `json:"location"`
	Area        string                   `json:"area"`
	Rooms       string                   `json:"rooms"`
	Bathrooms   string                   `json:"bathrooms"`
	Status      string                   `json:"status"`
	Photos      Photos                   `json:"photos,omitempty"`
	Styling     map[string]StylingRecord `json:"styling,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// NewProjectID returns "PROJ-<unix-ms>-<random base36>". IDs are generated
// server-side and never reused.
func NewProjectID() string {
	return fmt.Sprintf("PROJ-%d-%s", time.Now().UnixMilli(), randomSuffix(13))
}

func randomSuffix(n int) string {
	s := strconv.FormatUint(rand.Uint64(), 36)
	for len(s) < n {
		s += strconv.FormatUint(rand.Uint64(), 36)
	}
	return s[:n]
}
