package types

import (
	"image"
	"path/filepath"
	"sort"
)

// Identity names a frame by the directory it was listed from and its file name.
// It is a plain value and holds no open file handle.
type Identity struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

// NewIdentity builds an Identity from a full file path
func NewIdentity(path string) Identity {
	return Identity{Dir: filepath.Dir(path), Name: filepath.Base(path)}
}

// Path returns the full path of the frame's origin file
func (id Identity) Path() string {
	return filepath.Join(id.Dir, id.Name)
}

func (id Identity) String() string {
	return id.Path()
}

// Frame is a decoded 8-bit grayscale image paired with its origin
type Frame struct {
	ID  Identity
	Pix *image.Gray
}

// Width returns the frame width in pixels
func (f Frame) Width() int {
	if f.Pix == nil {
		return 0
	}
	return f.Pix.Bounds().Dx()
}

// Height returns the frame height in pixels
func (f Frame) Height() int {
	if f.Pix == nil {
		return 0
	}
	return f.Pix.Bounds().Dy()
}

// ImageSet holds every frame decoded from one directory listing
type ImageSet struct {
	Dir    string
	Frames []Frame
}

// Len returns the number of frames in the set
func (s *ImageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// SortByName orders frames by file name so repeated runs see the same order
func (s *ImageSet) SortByName() {
	sort.Slice(s.Frames, func(i, j int) bool {
		return s.Frames[i].ID.Path() < s.Frames[j].ID.Path()
	})
}

// Contains reports whether a frame with the given identity is in the set
func (s *ImageSet) Contains(id Identity) bool {
	for _, f := range s.Frames {
		if f.ID == id {
			return true
		}
	}
	return false
}

// MatchResult pairs a source frame with the pool frame chosen for it
type MatchResult struct {
	Source Identity `json:"source"`
	Match  Identity `json:"match"`
	Score  float64  `json:"score"`
}
