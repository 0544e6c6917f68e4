package entity

import "time"

// ResourceType distinguishes downloadable files from video resources.
type ResourceType string

const (
	ResourceFile  ResourceType = "File"
	ResourceVideo ResourceType = "Video"
)

// AccessType controls how a file resource may be consumed.
type AccessType string

const (
	AccessDownload AccessType = "download"
	AccessView     AccessType = "view"
)

// InputMethod records whether media came from an upload or a pasted URL.
type InputMethod string

const (
	InputUpload InputMethod = "upload"
	InputURL    InputMethod = "url"
)

// Resource is a file or video attached to a lesson or directly to a product.
type Resource struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ResourceType `json:"type"`
	FileURL     string       `json:"fileUrl"`
	FileName    string       `json:"fileName,omitempty"`
	InputMethod InputMethod  `json:"resourceInputMethod,omitempty"`
	AccessType  AccessType   `json:"accessType,omitempty"` // File resources only.
}

// Lesson is a single video unit with its own resources.
type Lesson struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	VideoURL      string      `json:"videoUrl"`
	VideoFileName string      `json:"videoFileName,omitempty"`
	Resources     []Resource  `json:"resources"`
	InputMethod   InputMethod `json:"videoInputMethod,omitempty"`
}

// SchoolDay groups the lessons of one day of a cohort-style school.
type SchoolDay struct {
	ID      string   `json:"id"`
	Day     int      `json:"day"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Clone returns a deep copy of the lesson.
func (l Lesson) Clone() Lesson {
	l.Resources = CloneResources(l.Resources)

	return l
}

// Clone returns a deep copy of the day.
func (d SchoolDay) Clone() SchoolDay {
	d.Lessons = CloneLessons(d.Lessons)

	return d
}

// CloneResources copies a resource list. A nil input yields an empty list.
func CloneResources(in []Resource) []Resource {
	out := make([]Resource, len(in))
	copy(out, in)

	return out
}

// CloneLessons deep-copies a lesson list.
func CloneLessons(in []Lesson) []Lesson {
	out := make([]Lesson, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}

	return out
}

// CloneSchoolDays deep-copies a school day list.
func CloneSchoolDays(in []SchoolDay) []SchoolDay {
	out := make([]SchoolDay, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}

	return out
}

// CertificateDesign is the colour and font theme of a completion certificate.
type CertificateDesign struct {
	Prompt          string `json:"prompt"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	BorderColor     string `json:"borderColor"`
	FontFamily      string `json:"fontFamily"`
	BadgeColor      string `json:"badgeColor"`
}

// DefaultCertificateDesign returns the house certificate theme.
func DefaultCertificateDesign() CertificateDesign {
	return CertificateDesign{
		Prompt:          "A modern, professional design",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#1F2937",
		AccentColor:     "#06B6D4",
		BorderColor:     "#374151",
		FontFamily:      "'Inter', sans-serif",
		BadgeColor:      "#FBBF24",
	}
}

// Review is a student's rating of a product.
type Review struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	Rating   int       `json:"rating"` // 1 to 5.
	Comment  string    `json:"comment"`
	Date     time.Time `json:"date"`
}
