package resumes

import "time"

// Resume is the stored record for a user's uploaded resume. Each user has at
// most one live resume; uploading again replaces it wholesale.
type Resume struct {
	ID         string
	UserID     string
	StorageKey string
	FileName   string
	Text       string
	CreatedAt  time.Time
}

// ParsedResume is the normalized structured record produced by the
// structured-extraction service. Absent fields are empty strings or empty
// slices, never missing.
type ParsedResume struct {
	Header     Header
	Summary    string
	Skills     []string
	Experience []ExperienceEntry
	Education  []EducationEntry
	Projects   []ProjectEntry
}

// Header holds the resume's contact block.
type Header struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Links     []ProfileLink
}

// ProfileLink is a validated social/profile URL from the header. Network is
// the URL's host; Username is the last non-empty path segment.
type ProfileLink struct {
	Network  string
	Username string
	URL      string
}

// ExperienceEntry is one work-history item. A nil EndDate means ongoing.
type ExperienceEntry struct {
	Position  string
	Company   string
	Summary   string
	StartDate *time.Time
	EndDate   *time.Time
}

// EducationEntry is one education item. Entries whose Institution is blank
// are dropped at persistence time rather than stored with a null school.
type EducationEntry struct {
	Institution string
	URL         string
	Area        string
	StudyType   string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectEntry is one project item. Roles is never empty; the extractor
// defaults it to ["Contributor"].
type ProjectEntry struct {
	Title         string
	Description   string
	DateCompleted *time.Time
	Links         []string
	Roles         []string
}
