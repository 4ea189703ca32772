package enums

// ImageType distinguishes the single representative image from gallery shots.
type ImageType string

const (
	ImageTypeMain ImageType = "MAIN"
	ImageTypeSub  ImageType = "SUB"
)

func (t ImageType) IsValid() bool {
	switch t {
	case ImageTypeMain, ImageTypeSub:
		return true
	}
	return false
}

func (t ImageType) String() string {
	return string(t)
}
