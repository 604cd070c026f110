// Package cli provides shell completion script generation for various shells.
package cli

import (
	"fmt"
	"io"
	"strings"
)

// GenerateCompletion writes a completion script for shell to out.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - algorithms: List of available algorithm names.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	algoList := strings.Join(algorithms, " ")
	var script string
	switch shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	_, err := fmt.Fprintf(out, script, algoList)
	return err
}

const bashCompletion = `# Bash completion script for fibcost
# Add this to your ~/.bashrc or ~/.bash_completion

_fibcost_completions() {
    local cur prev opts algorithms
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="--help -h --version -n -d --details --timeout --algo --json --server --port --max-recursive-n --sweep --no-color --output -o --quiet -q --interactive --completion --config --log-level"
    algorithms="%s all"

    case "${prev}" in
        --algo)
            COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )
            return 0
            ;;
        --completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        --log-level)
            COMPREPLY=( $(compgen -W "debug info warn error disabled" -- "${cur}") )
            return 0
            ;;
        --output|-o|--config)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        --timeout)
            COMPREPLY=( $(compgen -W "10s 1m 5m 10m" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _fibcost_completions fibcost
`

const zshCompletion = `#compdef fibcost

# Zsh completion script for fibcost
# Add this to your ~/.zshrc or place in $fpath

_fibcost() {
    local -a algorithms
    algorithms=(%s all)

    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '--version[Show version information]' \
        '-n[Index n of Fibonacci number]:number:' \
        '(-d --details)'{-d,--details}'[Show cost and timing details]' \
        '--timeout[Maximum execution time]:duration:(10s 1m 5m 10m)' \
        '--algo[Algorithm to use]:algorithm:($algorithms)' \
        '--json[Output in JSON format]' \
        '--server[Start HTTP server mode]' \
        '--port[Server port]:port:(8080 3000 9000)' \
        '--max-recursive-n[Largest recursive index served]:number:' \
        '--sweep[Measure the cost of every index up to n]' \
        '--no-color[Disable colored output]' \
        '(-o --output)'{-o,--output}'[Output file path]:file:_files' \
        '(-q --quiet)'{-q,--quiet}'[Print only result and cost]' \
        '--interactive[Start interactive REPL mode]' \
        '--completion[Generate completion script]:shell:(bash zsh fish)' \
        '--config[YAML configuration file]:file:_files' \
        '--log-level[Log level]:level:(debug info warn error disabled)'
}

_fibcost "$@"
`

const fishCompletion = `# Fish completion script for fibcost
# Add this to ~/.config/fish/completions/fibcost.fish

complete -c fibcost -f

complete -c fibcost -s h -l help -d 'Show help message'
complete -c fibcost -l version -d 'Show version information'

complete -c fibcost -s n -d 'Fibonacci index to calculate' -x
complete -c fibcost -s d -l details -d 'Show cost and timing details'
complete -c fibcost -l timeout -d 'Maximum execution time' -xa '10s 1m 5m 10m'
complete -c fibcost -l algo -d 'Algorithm to use' -xa '%s all'
complete -c fibcost -l sweep -d 'Measure the cost of every index up to n'

complete -c fibcost -l json -d 'Output in JSON format'
complete -c fibcost -s o -l output -d 'Output file path' -rF
complete -c fibcost -s q -l quiet -d 'Print only result and cost'
complete -c fibcost -l no-color -d 'Disable colored output'

complete -c fibcost -l server -d 'Start HTTP server mode'
complete -c fibcost -l port -d 'Server port' -xa '8080 3000 9000'
complete -c fibcost -l max-recursive-n -d 'Largest recursive index served' -x

complete -c fibcost -l interactive -d 'Start interactive REPL mode'
complete -c fibcost -l completion -d 'Generate completion script' -xa 'bash zsh fish'
complete -c fibcost -l config -d 'YAML configuration file' -rF
complete -c fibcost -l log-level -d 'Log level' -xa 'debug info warn error disabled'
`
