package resumes

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	usernameUnknown = "N/A"
	defaultRole     = "Contributor"
)

type rawRecord struct {
	Header struct {
		FName   string   `json:"fname"`
		LName   string   `json:"lname"`
		Email   string   `json:"email"`
		Phone   string   `json:"phone"`
		Address string   `json:"address"`
		Links   []string `json:"links"`
	} `json:"header"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Experience []struct {
		Position  string  `json:"position"`
		Company   string  `json:"company"`
		StartDate *string `json:"startDate"`
		EndDate   *string `json:"endDate"`
		Summary   string  `json:"summary"`
	} `json:"experience"`
	Education []struct {
		Institution string  `json:"institution"`
		URL         string  `json:"url"`
		Area        string  `json:"area"`
		StudyType   string  `json:"studyType"`
		StartDate   *string `json:"startDate"`
		EndDate     *string `json:"endDate"`
	} `json:"education"`
	Projects []struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		DateCompleted *string  `json:"dateCompleted"`
		Links         []string `json:"links"`
		Roles         []string `json:"roles"`
	} `json:"projects"`
}

// DecodeParsed validates and normalizes the raw extraction-service JSON into
// a ParsedResume. It fails only when the payload is not the expected JSON
// shape; field-level problems (malformed URLs, unparsable dates) are
// recovered by dropping the offending value, never by failing the record.
func DecodeParsed(raw json.RawMessage) (ParsedResume, error) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ParsedResume{}, fmt.Errorf("decode parsed resume: %w", err)
	}

	out := ParsedResume{
		Header: Header{
			FirstName: strings.TrimSpace(rec.Header.FName),
			LastName:  strings.TrimSpace(rec.Header.LName),
			Email:     strings.TrimSpace(rec.Header.Email),
			Phone:     strings.TrimSpace(rec.Header.Phone),
			Address:   strings.TrimSpace(rec.Header.Address),
			Links:     profileLinks(rec.Header.Links),
		},
		Summary: strings.TrimSpace(rec.Summary),
		Skills:  normalizeSkills(rec.Skills),
	}

	for _, exp := range rec.Experience {
		out.Experience = append(out.Experience, ExperienceEntry{
			Position:  strings.TrimSpace(exp.Position),
			Company:   strings.TrimSpace(exp.Company),
			Summary:   strings.TrimSpace(exp.Summary),
			StartDate: parseDate(exp.StartDate),
			EndDate:   parseDate(exp.EndDate),
		})
	}

	for _, edu := range rec.Education {
		out.Education = append(out.Education, EducationEntry{
			Institution: strings.TrimSpace(edu.Institution),
			URL:         strings.TrimSpace(edu.URL),
			Area:        strings.TrimSpace(edu.Area),
			StudyType:   strings.TrimSpace(edu.StudyType),
			StartDate:   parseDate(edu.StartDate),
			EndDate:     parseDate(edu.EndDate),
		})
	}

	for _, proj := range rec.Projects {
		out.Projects = append(out.Projects, ProjectEntry{
			Title:         strings.TrimSpace(proj.Title),
			Description:   strings.TrimSpace(proj.Description),
			DateCompleted: parseDate(proj.DateCompleted),
			Links:         validLinks(proj.Links),
			Roles:         normalizeRoles(proj.Roles),
		})
	}

	return out, nil
}

// parseDate turns a "YYYY-MM-DD" string into a calendar date. Null, empty
// and malformed values all mean absent; an empty string never stands for
// "ongoing".
func parseDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// profileLinks keeps well-formed URLs and derives a network and username for
// each, deduplicating by network since profiles are unique per network.
func profileLinks(raw []string) []ProfileLink {
	var out []ProfileLink
	seen := make(map[string]struct{})
	for _, link := range raw {
		u, ok := parseLink(link)
		if !ok {
			continue
		}
		network := u.Hostname()
		if _, dup := seen[network]; dup {
			continue
		}
		seen[network] = struct{}{}
		out = append(out, ProfileLink{
			Network:  network,
			Username: usernameFromPath(u.Path),
			URL:      strings.TrimSpace(link),
		})
	}
	return out
}

// validLinks keeps well-formed URLs and silently drops the rest.
func validLinks(raw []string) []string {
	var out []string
	for _, link := range raw {
		if _, ok := parseLink(link); ok {
			out = append(out, strings.TrimSpace(link))
		}
	}
	return out
}

func parseLink(raw string) (*url.URL, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func usernameFromPath(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(segments[i]); seg != "" {
			return seg
		}
	}
	return usernameUnknown
}

func normalizeSkills(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range raw {
		skill := strings.TrimSpace(s)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func normalizeRoles(raw []string) []string {
	var out []string
	for _, r := range raw {
		if role := strings.TrimSpace(r); role != "" {
			out = append(out, role)
		}
	}
	if len(out) == 0 {
		return []string{defaultRole}
	}
	return out
}

// splitCityState splits a header address of the form "City, ST" the way the
// extraction service reports it. Either part may be empty.
func splitCityState(address string) (city, state string) {
	parts := strings.SplitN(address, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}
