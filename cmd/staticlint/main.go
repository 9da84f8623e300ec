// Package main запускает multichecker для toolbox.
//
// Набор анализаторов:
//   - shadow, nilness, printf: общие ошибки в обработчиках и сервисе
//   - structtag: json-теги моделей запросов и ответов в internal/model
//   - fieldalignment: раскладка структур, которые живут долго (галерея, воркспейсы)
//   - errorsas: статусы ответов выбираются через errors.As (*RequestError, *ConvertError)
//   - httpresponse и bodyclose: тестер API читает чужие ответы, тело надо закрывать
//   - staticcheck: все SA, а также S1000 (упрощения) и U1000 (неиспользуемый код)
//   - defaultclient: запросы пользователя идут только через клиент
//     apitester.NewClient с таймаутом и запретом частных адресов
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"slices"
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/fblazt/toolbox/cmd/staticlint/defaultclient"
)

// simpleChecks проверки из набора simple.
var simpleChecks = []string{"S1000"}

func main() {
	analyzers := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		printf.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		bodyclose.Analyzer,
		defaultclient.NewAnalyzer(),
		unused.Analyzer.Analyzer,
	}
	analyzers = append(analyzers, staticcheckAnalyzers(simpleChecks)...)

	multichecker.Main(analyzers...)
}

// staticcheckAnalyzers возвращает все SA-анализаторы и выбранные из simple.
func staticcheckAnalyzers(simpleNames []string) []*analysis.Analyzer {
	var out []*analysis.Analyzer
	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			out = append(out, a.Analyzer)
		}
	}
	return append(out, pick(simple.Analyzers, simpleNames)...)
}

func pick(set []*lint.Analyzer, names []string) []*analysis.Analyzer {
	var out []*analysis.Analyzer
	for _, a := range set {
		if slices.Contains(names, a.Analyzer.Name) {
			out = append(out, a.Analyzer)
		}
	}
	return out
}
