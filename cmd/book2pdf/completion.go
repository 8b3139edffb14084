package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota
	flagBool
	flagInt
	flagFile // file with glob pattern
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	FileGlob string
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for positional arguments, empty if none
}

// completionMeta holds completion hints that a FlagSet cannot express.
type completionMeta struct {
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"config":     {FileGlob: "*.yaml,*.yml"},
	"output":     {FileGlob: "*.pdf"},
	"output-dir": {IsDir: true},
}

// extractFlagsFromFlagSet turns a FlagSet into completion definitions.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry, with flags read from the
// FlagSets the commands actually parse.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        cmdHTML,
			Desc:        "Print chapter pages and merge them into one PDF",
			Flags:       extractFlagsFromFlagSet(newHTMLFlagSet(&htmlFlags{})),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:        cmdMarkdown,
			Desc:        "Rebuild chapters from markdown and combine their PDFs",
			Flags:       extractFlagsFromFlagSet(newMarkdownFlagSet(&markdownFlags{})),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "doctor",
			Desc:  "Check Chrome, environment and network",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
		},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes a completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w, getCommands())
	case ShellZsh:
		return generateZsh(w, getCommands())
	case ShellFish:
		return generateFish(w, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// globs splits "*.md,*.markdown" into its patterns.
func globs(pattern string) []string {
	if pattern == "" {
		return nil
	}
	return strings.Split(pattern, ",")
}

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for book2pdf\n")
	b.WriteString("_book2pdf() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	fmt.Fprintf(&b, "    if [[ $COMP_CWORD -eq 1 ]]; then\n        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n        return\n    fi\n\n", commandNames(cmds))

	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if seen[f.Long] || (f.Type != flagFile && f.Type != flagDir) {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        --%s", f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, "|-%s", f.Short)
			}
			if f.Type == flagDir {
				b.WriteString(")\n            COMPREPLY=($(compgen -d -- \"$cur\"))\n            return ;;\n")
				continue
			}
			b.WriteString(")\n            COMPREPLY=($(compgen -f -- \"$cur\"))\n            return ;;\n")
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
		}
		if c.Name == "completion" {
			words = []string{string(ShellBash), string(ShellZsh), string(ShellFish)}
		}
		if c.Name == "help" {
			words = strings.Fields(commandNames(cmds))
		}
		if len(words) == 0 && c.FilePattern == "" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if c.FilePattern != "" {
			b.WriteString("            if [[ \"$cur\" != -* ]]; then\n")
			b.WriteString("                COMPREPLY=($(compgen -f -- \"$cur\"))\n")
			b.WriteString("                return\n")
			b.WriteString("            fi\n")
		}
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", strings.Join(words, " "))
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _book2pdf book2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape escapes characters that break _arguments specs.
func zshEscape(s string) string {
	r := strings.NewReplacer("[", "\\[", "]", "\\]", ":", "\\:", "'", "'\\''")
	return r.Replace(s)
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef book2pdf\n\n")
	b.WriteString("_book2pdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$words[2]\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 && c.Name != "completion" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if c.Name == "completion" {
			b.WriteString("            _values 'shell' bash zsh fish ;;\n")
			continue
		}
		b.WriteString("            _arguments \\\n")
		for _, f := range c.Flags {
			action := ""
			switch f.Type {
			case flagFile:
				action = fmt.Sprintf(":file:_files -g \"%s\"", strings.Join(globs(f.FileGlob), " "))
			case flagDir:
				action = ":directory:_directories"
			case flagString, flagInt:
				action = ":value:"
			}
			desc := zshEscape(f.Desc)
			if f.Short != "" {
				fmt.Fprintf(&b, "                '(-%s --%s)'{-%s,--%s}'[%s]%s' \\\n", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(&b, "                '--%s[%s]%s' \\\n", f.Long, desc, action)
			}
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "                '1:chapter list:_files -g \"%s\"' ;;\n", strings.Join(globs(c.FilePattern), " "))
		} else {
			b.WriteString("                ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _book2pdf book2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for book2pdf\n")
	b.WriteString("complete -c book2pdf -f\n")
	names := commandNames(cmds)
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c book2pdf -n \"not __fish_seen_subcommand_from %s\" -a %s -d %q\n", names, c.Name, c.Desc)
	}
	b.WriteString("complete -c book2pdf -n \"__fish_seen_subcommand_from completion\" -a \"bash zsh fish\"\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("__fish_seen_subcommand_from %s", c.Name)
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c book2pdf -n %q -F\n", cond)
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c book2pdf -n %q -l %s", cond, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagFile:
				b.WriteString(" -r -F")
			case flagDir:
				b.WriteString(" -r -a \"(__fish_complete_directories)\"")
			case flagString, flagInt:
				b.WriteString(" -r")
			}
			fmt.Fprintf(&b, " -d %q\n", f.Desc)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(book2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(book2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    book2pdf completion fish > ~/.config/fish/completions/book2pdf.fish")
}
