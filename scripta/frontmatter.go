package scripta

import (
	"strings"

	"github.com/hesusruiz/vcutils/yaml"
)

// ParseFrontMatter extracts an optional leading YAML front-matter block
// (delimited by "---" lines, as in the teacher's ReadYamlHeader) from
// source and parses it. It returns the parsed config (never nil — an
// absent or malformed block parses to an empty *yaml.YAML rather than
// erroring, per spec.md §7's "malformed front matter... skipped" rule)
// and the remaining body text for the block parser to consume.
func ParseFrontMatter(source string) (*yaml.YAML, string) {
	empty, _ := yaml.ParseYaml("")

	lines := classifyLines(source)
	if len(lines) == 0 || lines[0].Trimmed() != "---" {
		return empty, source
	}

	var yamlText strings.Builder
	end := -1
	for i := 1; i < len(lines); i++ {
		if lines[i].Trimmed() == "---" {
			end = i
			break
		}
		yamlText.WriteString(lines[i].Content)
		yamlText.WriteByte('\n')
	}
	if end == -1 {
		return empty, source
	}

	cfg, err := yaml.ParseYaml(yamlText.String())
	if err != nil {
		log.Warnw("malformed front matter, skipping", "error", err)
		return empty, source
	}

	rest := strings.Join(contentsFrom(lines, end+1), "\n")
	return cfg, rest
}

func contentsFrom(lines []Line, from int) []string {
	out := make([]string, 0, len(lines)-from)
	for i := from; i < len(lines); i++ {
		out = append(out, lines[i].Content)
	}
	return out
}

// configToKeyValues flattens the top-level string-valued keys of a parsed
// front-matter config into the plain map shape keyValueDict already uses,
// so Compile can union it in the same way a `settings` block is unioned.
func configToKeyValues(cfg *yaml.YAML, keys []string) map[string]string {
	out := map[string]string{}
	if cfg == nil {
		return out
	}
	for _, k := range keys {
		if v := cfg.String(k, ""); v != "" {
			out[k] = v
		}
	}
	return out
}
