// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
)

const bashCompletionScript = `# bash completion for vhsec
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_vhsec()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "check detail dynamic similar screenshot cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --no-color --filter -f --local -l --output -o --sort -s --titles -t --no-titles --schema"
    local service="--api-key -k --endpoint --service-endpoint --cache-backend --cache-file --s3-bucket --s3-key --s3-region --s3-endpoint --timeout --parallel -p"

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --cache-backend)
            COMPREPLY=( $(compgen -W "file s3 memory" -- "$cur") )
            return 0
            ;;
        --cache-file)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    case "$cmd" in
        check|dynamic)
            local opts="$common $service --strict"
            ;;
        detail|similar|screenshot)
            local opts="$common $service"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "info list clear" -- "$cur") )
                return 0
            fi
            local opts="$common $service"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _vhsec vhsec
`

const zshCompletionScript = `#compdef vhsec

_vhsec() {
  local -a cmds
  cmds=(
    'check:score URLs'
    'detail:classify URLs'
    'dynamic:score URLs by dynamic analysis'
    'similar:find look-alike domains'
    'screenshot:build screenshot URLs'
    'cache:inspect or clear the response cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
    '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
    '(-c --color)'{-c,--color}'[enable colored text]'
    '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
    '(-l --local)'{-l,--local}'[local timestamps]'
    '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
    '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
    '(-t --titles)'{-t,--titles}'[show titles]'
    '--schema[list row attributes]'
  )

  local -a service
  service=(
    '(-k --api-key)'{-k,--api-key}'[service API key]:key'
    '--endpoint[service base URL]:url'
    '--service-endpoint[analysis base URL]:url'
    '--cache-backend[cache backend]:backend:(file s3 memory)'
    '--cache-file[cache file]:file:_files'
    '--s3-bucket[cache bucket]:bucket'
    '--s3-key[cache object key]:key'
    '--s3-region[cache bucket region]:region'
    '--s3-endpoint[S3-compatible endpoint]:url'
    '--timeout[per request timeout]:duration'
    '(-p --parallel)'{-p,--parallel}'[lookups in flight]:n'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'vhsec commands' cmds
    return
  fi

  case $words[2] in
    check|dynamic)
      _arguments -C $common $service '--strict[fail on malicious URLs]' '*:URL'
      ;;
    detail)
      _arguments -C $common $service '*:URL'
      ;;
    similar)
      _arguments -C $common $service '*:domain'
      ;;
    screenshot)
      _arguments -C $common $service '*:file'
      ;;
    cache)
      if (( CURRENT == 3 )); then
        _values 'cache commands' info list clear
        return
      fi
      _arguments -C $common $service
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _vhsec vhsec
`

// CompletionCommandAction prints the completion script for the shell named in
// the first arg, or for $SHELL when none is given.
func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return errors.New("usage: vhsec completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "vhsec completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
