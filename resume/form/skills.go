package form

import "strings"

// SkillsMode selects how blank lines are treated when splitting skills text.
type SkillsMode int

const (
	// DropBlank discards lines that are empty after trimming.
	DropBlank SkillsMode = iota
	// KeepBlank keeps them as empty entries.
	KeepBlank
)

// SplitSkills splits text into one trimmed skill per line.
func SplitSkills(text string, mode SkillsMode) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" && mode == DropBlank {
			continue
		}
		out = append(out, line)
	}
	return out
}

// JoinSkills is the inverse of SplitSkills for populating the text block.
func JoinSkills(skills []string) string {
	return strings.Join(skills, "\n")
}
