package models

import "time"

// Creator represents a creator folder under the media root
type Creator struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Video represents a single .mp4 file with its derived metadata.
//
// ID is positional within one listing response. Key is derived from the
// creator and filename and stays the same across requests.
type Video struct {
	ID           int       `json:"id" yaml:"id"`
	Key          string    `json:"key" yaml:"key"`
	Title        string    `json:"title" yaml:"title"`
	Author       string    `json:"author" yaml:"author"`
	Time         string    `json:"time" yaml:"time"`
	Duration     string    `json:"duration" yaml:"duration"`
	Likes        string    `json:"likes" yaml:"likes"`
	VideoURL     string    `json:"videoUrl" yaml:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl" yaml:"thumbnailUrl"`
	AvatarURL    string    `json:"avatarUrl" yaml:"avatarUrl"`
	FileSize     string    `json:"fileSize" yaml:"fileSize"`
	Date         time.Time `json:"date" yaml:"date"`

	FileName string `json:"-" yaml:"-"`
	Path     string `json:"-" yaml:"-"`
}

// NavLink is one entry of the server-rendered creator navigation
type NavLink struct {
	Name  string
	Href  string
	Class string
}

// Index represents the server-rendered gallery page data.
// Hrefs and active classes are computed before rendering.
type Index struct {
	AllClass string
	Nav      []NavLink
	Videos   []Video
	Active   string
}
