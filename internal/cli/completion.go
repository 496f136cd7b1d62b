package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// completionFlag describes a flag for the completion scripts.
type completionFlag struct {
	Long   string
	Short  string
	Help   string
	Values string // space separated suggestions, "" for none
	File   bool   // complete file names
}

var completionFlags = []completionFlag{
	{Long: "digits", Short: "d", Help: "Number of digits", Values: "1000 10K 100K 1M 1e6"},
	{Long: "calculate", Short: "c", Help: "Number of digits", Values: "1000 10K 100K 1M 1e6"},
	{Long: "algo", Help: "Backend to use"},
	{Long: "timeout", Help: "Maximum execution time", Values: "1m 5m 10m 30m 1h"},
	{Long: "margin-bits", Help: "Guard bits of working precision", Values: "256 512 1024"},
	{Long: "fft-threshold", Help: "FFT threshold in bits", Values: "100000 500000 1000000"},
	{Long: "verbose", Short: "v", Help: "Debug logging and full values"},
	{Long: "details", Help: "Show precision and term details"},
	{Long: "json", Help: "Output results as JSON"},
	{Long: "quiet", Short: "q", Help: "Print only the digits"},
	{Long: "output", Short: "o", Help: "Write digits to a file", File: true},
	{Long: "server", Help: "Start the HTTP server"},
	{Long: "port", Help: "Server port", Values: "8080 3000 5000 9000"},
	{Long: "server-max-digits", Help: "Largest digit count per request", Values: "100000 1000000"},
	{Long: "interactive", Help: "Start the REPL"},
	{Long: "calibrate", Help: "Measure the FFT crossover"},
	{Long: "auto-calibrate", Help: "Quick calibration before calculating"},
	{Long: "calibration-profile", Help: "Calibration profile path", File: true},
	{Long: "no-color", Help: "Disable colors"},
	{Long: "completion", Help: "Print a completion script", Values: "bash zsh fish powershell"},
	{Long: "config", Help: "Config file", File: true},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "help", Short: "h", Help: "Show help"},
}

type completionData struct {
	Program    string
	Algorithms string
	Flags      []completionFlag
}

const bashCompletion = `# Bash completion script for {{.Program}}
# Add this to your ~/.bashrc or ~/.bash_completion

_{{.Program}}_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        --algo)
            COMPREPLY=( $(compgen -W "{{.Algorithms}}" -- "${cur}") )
            return 0
            ;;
{{- range .Flags}}{{if .File}}
        --{{.Long}}{{if .Short}}|-{{.Short}}{{end}})
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
{{- else if .Values}}
        --{{.Long}}{{if .Short}}|-{{.Short}}{{end}})
            COMPREPLY=( $(compgen -W "{{.Values}}" -- "${cur}") )
            return 0
            ;;
{{- end}}{{end}}
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "{{range .Flags}}--{{.Long}} {{if .Short}}-{{.Short}} {{end}}{{end}}" -- "${cur}") )
    fi
}

complete -F _{{.Program}}_completions {{.Program}}
`

const zshCompletion = `#compdef {{.Program}}

# Zsh completion script for {{.Program}}
# Place this file in a directory of your $fpath

_{{.Program}}() {
    _arguments -s \
{{- range .Flags}}
        {{if .Short}}'(-{{.Short}} --{{.Long}})'{-{{.Short}},--{{.Long}}}'{{else}}'--{{.Long}}{{end}}[{{.Help}}]{{if eq .Long "algo"}}:algorithm:({{$.Algorithms}}){{else if .File}}:file:_files{{else if .Values}}:value:({{.Values}}){{end}}' \
{{- end}}
        '1:digits:(1000 10K 100K 1M)'
}

_{{.Program}} "$@"
`

const fishCompletion = `# Fish completion script for {{.Program}}
# Save as ~/.config/fish/completions/{{.Program}}.fish

complete -c {{.Program}} -f
{{- range .Flags}}
complete -c {{$.Program}} -l {{.Long}}{{if .Short}} -s {{.Short}}{{end}} -d '{{.Help}}'{{if eq .Long "algo"}} -x -a '{{$.Algorithms}}'{{else if .File}} -r -F{{else if .Values}} -x -a '{{.Values}}'{{end}}
{{- end}}
`

const powershellCompletion = `# PowerShell completion script for {{.Program}}
# Add this to your $PROFILE

Register-ArgumentCompleter -Native -CommandName {{.Program}} -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $algorithms = @({{range $i, $a := split .Algorithms}}{{if $i}}, {{end}}'{{$a}}'{{end}})
    $flags = @({{range $i, $f := .Flags}}{{if $i}}, {{end}}'--{{$f.Long}}'{{end}})

    $previous = $commandAst.CommandElements[-1].Extent.Text
    if ($previous -eq '--algo') {
        $algorithms | Where-Object { $_ -like "$wordToComplete*" } |
            ForEach-Object { [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_) }
        return
    }

    $flags | Where-Object { $_ -like "$wordToComplete*" } |
        ForEach-Object { [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_) }
}
`

// ErrUnsupportedShell is returned by GenerateCompletion for an unknown shell.
var ErrUnsupportedShell = errors.New("unsupported shell")

var completionTemplates = map[string]*template.Template{
	"bash":       mustCompletionTemplate("bash", bashCompletion),
	"zsh":        mustCompletionTemplate("zsh", zshCompletion),
	"fish":       mustCompletionTemplate("fish", fishCompletion),
	"powershell": mustCompletionTemplate("powershell", powershellCompletion),
}

func mustCompletionTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(template.FuncMap{"split": strings.Fields}).Parse(text))
}

// GenerateCompletion writes the completion script of shell ("bash", "zsh",
// "fish", "powershell" or "ps") for picalc to out. Nothing is written when
// the script cannot be rendered completely.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	if shell == "ps" {
		shell = "powershell"
	}
	tmpl, ok := completionTemplates[shell]
	if !ok {
		return fmt.Errorf("%w: %s (accepted values: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	return renderCompletion(out, tmpl, completionData{
		Program:    "picalc",
		Algorithms: strings.Join(append(append([]string{}, algorithms...), "all"), " "),
		Flags:      completionFlags,
	})
}

func renderCompletion(out io.Writer, tmpl *template.Template, data completionData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering %s completion: %w", tmpl.Name(), err)
	}
	_, err := buf.WriteTo(out)
	return err
}
