package platform

import "fmt"

// Requirements captures the per-platform content rules checked before a
// post is accepted. Validation runs at create/update time; adapters assume
// they only ever receive already-valid payloads.
type Requirements struct {
	DisplayName      string
	MaxContentLength int
	MediaRequired    bool
	MaxImages        int
	MaxVideos        int
}

var requirements = map[string]Requirements{
	Instagram: {
		DisplayName:      "Instagram",
		MaxContentLength: 2200,
		MediaRequired:    true,
		MaxImages:        10,
		MaxVideos:        1,
	},
	TikTok: {
		DisplayName:      "TikTok",
		MaxContentLength: 2200,
		MediaRequired:    true,
		MaxImages:        35,
		MaxVideos:        1,
	},
	X: {
		DisplayName:      "X (Twitter)",
		MaxContentLength: 280,
		MaxImages:        4,
		MaxVideos:        1,
	},
	Bluesky: {
		DisplayName:      "Bluesky",
		MaxContentLength: 300,
		MaxImages:        4,
		MaxVideos:        1,
	},
	Threads: {
		DisplayName:      "Threads",
		MaxContentLength: 500,
		MaxImages:        20,
		MaxVideos:        1,
	},
	LinkedIn: {
		DisplayName:      "LinkedIn",
		MaxContentLength: 3000,
		MaxImages:        9,
		MaxVideos:        1,
	},
	Facebook: {
		DisplayName:      "Facebook",
		MaxContentLength: 63206,
		MaxImages:        10,
		MaxVideos:        1,
	},
}

func RequirementsFor(platform string) (Requirements, bool) {
	req, ok := requirements[platform]
	return req, ok
}

func Supported(platform string) bool {
	_, ok := requirements[platform]
	return ok
}

// Validate checks content and media against one platform's rules and
// returns the list of violations, empty when the content is acceptable.
func Validate(platform, content, postType string, mediaCount int) []string {
	req, ok := requirements[platform]
	if !ok {
		return []string{fmt.Sprintf("unsupported platform %q", platform)}
	}

	var violations []string
	if length := len([]rune(content)); length > req.MaxContentLength {
		violations = append(violations, fmt.Sprintf(
			"content exceeds %s limit of %d characters (got %d)",
			req.DisplayName, req.MaxContentLength, length))
	}
	if req.MediaRequired && mediaCount == 0 {
		violations = append(violations, fmt.Sprintf(
			"%s requires at least one image or video", req.DisplayName))
	}
	switch postType {
	case "video", "reel":
		if mediaCount > req.MaxVideos {
			violations = append(violations, fmt.Sprintf(
				"%s allows at most %d video(s)", req.DisplayName, req.MaxVideos))
		}
	default:
		if mediaCount > req.MaxImages {
			violations = append(violations, fmt.Sprintf(
				"%s allows at most %d image(s)", req.DisplayName, req.MaxImages))
		}
	}
	return violations
}

// ValidateAll validates content for every requested platform and returns a
// map from platform to its violations. An empty map means all platforms
// accept the content.
func ValidateAll(platforms []string, content, postType string, mediaCount int) map[string][]string {
	violations := make(map[string][]string)
	for _, p := range platforms {
		if v := Validate(p, content, postType, mediaCount); len(v) > 0 {
			violations[p] = v
		}
	}
	return violations
}
