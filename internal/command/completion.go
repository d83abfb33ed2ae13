// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/meta"
)

const bashCompletionScript = `# bash completion for tfboot
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tfboot()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "up down sq bq wq svq cq im completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr"
  local stack="--project --org --repo --profile --region --lock-table --workspace -w"

    # Determine if an optional RootDir (first non-flag after subcommand) has
		# already been provided
    local have_rootdir=0
    local idx=2
    while [[ $idx -lt ${#COMP_WORDS[@]} ]]; do
        local w=${COMP_WORDS[$idx]}
        if [[ $w != -* ]]; then
            have_rootdir=1
            break
        fi
        ((idx++))
    done

    case "$cmd" in
    up)
      local opts="$common --schema $stack --dry-run --skip-parameter"
            ;;
        down)
      local opts="--tldr $stack --keep-bucket --purge --yes -y"
            ;;
        sq)
      local opts="$common --schema $stack"
            ;;
        bq)
      local opts="--tldr $stack --check --key -k --name --source --write"
            ;;
        wq)
      local opts="$common --schema $stack"
            ;;
        svq)
      local opts="$common --schema $stack --key -k --diff --limit --passphrase -p"
            ;;
        cq)
      local opts="$common --schema $stack --delete --deploy --dir --status --template-base-url"
            ;;
        im)
      local opts="--tldr $stack --dry-run --force"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--workspace" || "$prev" == "-w" ]]; then
        COMPREPLY=( $(compgen -W "dev staging prod" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--source" ]]; then
        COMPREPLY=( $(compgen -W "local ssm" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', or we've already consumed RootDir, offer flags
  if [[ "$cur" == -* || $have_rootdir -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise, we're on the (optional) RootDir positional — complete directories
  COMPREPLY=( $(compgen -o dirnames -- "$cur") )
  return 0
}

complete -F _tfboot tfboot
`

const zshCompletionScript = `#compdef tfboot

_tfboot() {
  local -a cmds
  cmds=(
    'up:provision the state backend stack'
    'down:remove the state backend stack'
    'sq:stack query'
    'bq:backend configuration query'
    'wq:workspace query'
    'svq:state version query'
    'cq:cloudformation query'
    'im:import pre-existing state resources'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[show local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a stack
  stack=(
  '--project[project whose state resources are managed]:project'
  '--org[GitHub organization owning the repository]:org'
  '--repo[repository URL trusted by the state role]:repo'
  '--profile[AWS profile]:profile'
  '--region[AWS region]:region'
  '--lock-table[DynamoDB lock table name or auto]:table'
  '(-w --workspace)'{-w,--workspace}'[workspace]:workspace:(dev staging prod)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'tfboot commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    up)
      _arguments -C \
        $common \
        $stack \
        '--schema[dump schema]' \
        '--dry-run[show the converge plan without changing anything]' \
        '--skip-parameter[do not store the backend configuration parameter]' \
        '::RootDir:_directories'
      ;;
    down)
      _arguments -C \
        $stack \
        '--tldr[show tldr page]' \
        '--keep-bucket[leave the bucket in place]' \
        '--purge[delete every object version first]' \
        '(-y --yes)'{-y,--yes}'[skip the interactive confirmation]' \
        '::RootDir:_directories'
      ;;
    sq)
      _arguments -C \
        $common \
        $stack \
        '--schema[dump schema]' \
        '::RootDir:_directories'
      ;;
    bq)
      _arguments -C \
        $stack \
        '--tldr[show tldr page]' \
        '--check[compare computed and stored configurations]' \
        '(-k --key)'{-k,--key}'[workload name or state object key]:key' \
        '--name[print the parameter name instead]' \
        '--source[where the configuration is read from]:source:(local ssm)' \
        '--write[write the configuration to a file]:file:_files' \
        '::RootDir:_directories'
      ;;
    wq)
      _arguments -C \
        $common \
        $stack \
        '--schema[dump schema]' \
        '::RootDir:_directories'
      ;;
    svq)
      _arguments -C \
        $common \
        $stack \
        '--schema[dump schema]' \
        '(-k --key)'{-k,--key}'[workload name or state object key]:key' \
        '--diff[diff two state versions]' \
        '--limit[limit versions returned]:limit' \
        '(-p --passphrase)'{-p,--passphrase}'[encrypted state passphrase]' \
        '::RootDir:_directories'
      ;;
    cq)
      _arguments -C \
        $common \
        $stack \
        '--schema[dump schema]' \
        '--delete[delete the deployed stack]' \
        '--deploy[create or update the stack]' \
        '--dir[directory the template set is written to]:dir:_directories' \
        '--status[describe the deployed stack]' \
        '--template-base-url[base URL of the uploaded child templates]:url' \
        '::RootDir:_directories'
      ;;
    im)
      _arguments -C \
        $stack \
        '--tldr[show tldr page]' \
        '--dry-run[show the import commands without running them]' \
        '--force[import even when import_existing_resources is false]' \
        '::RootDir:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tfboot tfboot tfboot
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: tfboot completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tfboot completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
