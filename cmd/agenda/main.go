package main

import (
	"os"
	"strings"

	"agenda-cli/internal/cli"
)

func isDetailID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "det-") && len(s) > len("det-")
}

// rewriteDirectDetailLookupArgs turns `agenda <detail-id>` into
// `agenda activity show <detail-id>`. Cobra treats the first positional
// token as a subcommand, so argv is rewritten before parsing. Persistent
// flags may come first, so the first positional is searched for.
func rewriteDirectDetailLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the id is
	// never mistaken for one.
	valueFlags := map[string]bool{
		"--config":  true,
		"--backend": true,
		"--dir":     true,
		"--event":   true,
		"--format":  true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "activity", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isDetailID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			switch {
			case strings.Contains(a, "="), boolFlags[a]:
			case valueFlags[a]:
				i++
			}
			continue
		}
		if isDetailID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectDetailLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
