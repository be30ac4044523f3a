package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	arx "go.arxlang.dev/pkg"
)

type diagnostic struct {
	loc  arx.Location
	kind string
	msg  string
}

func collectDiagnostics(err error) []diagnostic {
	var parseErrs arx.ErrorList
	if errors.As(err, &parseErrs) {
		out := make([]diagnostic, 0, len(parseErrs))
		for _, e := range parseErrs {
			out = append(out, diagnostic{loc: e.Loc, kind: e.Kind.String(), msg: e.Msg})
		}

		return out
	}

	var compileErrs arx.CompileErrors
	if errors.As(err, &compileErrs) {
		out := make([]diagnostic, 0, len(compileErrs))
		for _, e := range compileErrs {
			kind := "semantic"
			if _, ok := e.(*arx.CodegenError); ok {
				kind = "codegen"
			}

			loc := e.Location()
			msg := strings.TrimPrefix(e.Error(), loc.String()+": ")
			out = append(out, diagnostic{loc: loc, kind: kind, msg: msg})
		}

		return out
	}

	if err == nil {
		return nil
	}

	return []diagnostic{{msg: err.Error()}}
}

// renderDiagnostics writes one line per diagnostic in err and returns how
// many there were.
func renderDiagnostics(w io.Writer, err error) int {
	diags := collectDiagnostics(err)
	for _, d := range diags {
		var sb strings.Builder
		if d.loc.IsValid() {
			sb.WriteString(LocationStyle.Render(d.loc.String()))
			sb.WriteString(": ")
		}

		sb.WriteString(ErrorStyle.Render("error"))
		if d.kind != "" {
			sb.WriteString(KindStyle.Render("[" + d.kind + "]"))
		}

		sb.WriteString(": ")
		sb.WriteString(d.msg)

		fmt.Fprintln(w, sb.String())
	}

	return len(diags)
}

func errorCount(n int) error {
	if n == 1 {
		return errors.New("1 error")
	}

	return fmt.Errorf("%d errors", n)
}
