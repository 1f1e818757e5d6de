package script

import (
	"fmt"
	"strconv"
	"strings"
)

// Context supplies the values `{{var}}` tokens resolve against. Backtick
// sub-expressions are deliberately NOT handled here: Runner always invokes
// a command's resolved text through a shell (sh -c on POSIX), so backticks
// are left untouched by Interpolate and execute as ordinary shell command
// substitution once the process is spawned.
type Context struct {
	Args      []string          // positional args passed to `vx run <script> -- ...`
	Env       map[string]string // env.X
	Project   map[string]string // project.name, project.root, ...
	OS        map[string]string // os.name, os.arch
	Vx        map[string]string // vx.version, vx.home
	Home      string
	Timestamp string
}

// Interpolate expands every `{{token}}` in command against ctx. Unknown
// tokens are a hard error: a typo'd variable should fail the script rather
// than run with the literal `{{...}}` left in the command line.
func Interpolate(command string, ctx Context) (string, error) {
	var out strings.Builder
	rest := command
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", fmt.Errorf("script: unterminated {{ in command %q", command)
		}
		token := strings.TrimSpace(rest[:end])
		rest = rest[end+2:]

		resolved, err := resolveToken(token, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(resolved)
	}
}

func resolveToken(token string, ctx Context) (string, error) {
	switch {
	case token == "@":
		return shellJoin(ctx.Args), nil
	case token == "#":
		return strconv.Itoa(len(ctx.Args)), nil
	case token == "args":
		return strings.Join(ctx.Args, " "), nil
	case token == "home":
		return ctx.Home, nil
	case token == "timestamp":
		return ctx.Timestamp, nil
	case strings.HasPrefix(token, "arg"):
		n, err := strconv.Atoi(token[len("arg"):])
		if err != nil || n < 1 {
			return "", fmt.Errorf("script: unknown token {{%s}}", token)
		}
		if n > len(ctx.Args) {
			return "", fmt.Errorf("script: {{%s}} references an argument that was not supplied", token)
		}
		return ctx.Args[n-1], nil
	case strings.HasPrefix(token, "env."):
		return ctx.Env[token[len("env."):]], nil
	case strings.HasPrefix(token, "project."):
		return ctx.Project[token[len("project."):]], nil
	case strings.HasPrefix(token, "os."):
		return ctx.OS[token[len("os."):]], nil
	case strings.HasPrefix(token, "vx."):
		return ctx.Vx[token[len("vx."):]], nil
	default:
		return "", fmt.Errorf("script: unknown token {{%s}}", token)
	}
}

// shellJoin renders args as a single space-joined, POSIX single-quoted
// string safe to splice into a shell command line.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
