package bot

import (
	"strings"
)

// Flags holds the optional, order-independent listing flags. Tokens that
// are not flags (or flags missing their value) land in Args.
type Flags struct {
	User   string
	Symbol string
	From   string
	To     string
	Args   []string
}

func ParseFlags(args []string) Flags {
	f := Flags{}
	for i := 0; i < len(args); i++ {
		tok := args[i]
		var dst *string
		switch tok {
		case "--user":
			dst = &f.User
		case "--symbol":
			dst = &f.Symbol
		case "--from":
			dst = &f.From
		case "--to":
			dst = &f.To
		default:
			f.Args = append(f.Args, tok)
			continue
		}
		if i+1 < len(args) {
			*dst = args[i+1]
			i++
		} else {
			f.Args = append(f.Args, tok)
		}
	}
	return f
}

// SplitCommand extracts the command name and arguments from a message,
// stripping the leading slash and any @botname mention.
func SplitCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}
