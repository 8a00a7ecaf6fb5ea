package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain/search/filter"
)

// RankedSearch runs a weighted full-text query via FT.SEARCH WITHSCORES.
// Results come back ordered by score, highest first.
func (s *Store) RankedSearch(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	queryStr, ok := buildRankedQuery(q)
	if !ok {
		// Every token was punctuation; nothing can match.
		return &db.SearchResult{}, nil
	}

	args := []string{
		q.IndexName, queryStr,
		"WITHSCORES",
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseScoredResult(raw)
}

// --- Query building ---

// buildRankedQuery renders the query string. It reports false when a
// required group has no matchable tokens left.
func buildRankedQuery(q *db.RankedQuery) (string, bool) {
	var parts []string
	if f := buildFilter(q.Filters); f != "" {
		parts = append(parts, f)
	}

	for _, group := range q.Required {
		var alts []string
		for _, c := range group {
			if expr := buildClause(c); expr != "" {
				alts = append(alts, expr)
			}
		}
		switch len(alts) {
		case 0:
			return "", false
		case 1:
			parts = append(parts, alts[0])
		default:
			parts = append(parts, "("+strings.Join(alts, " | ")+")")
		}
	}

	for _, c := range q.Optional {
		if expr := buildClause(c); expr != "" {
			parts = append(parts, "~"+expr)
		}
	}

	return strings.Join(parts, " "), true
}

func buildClause(c db.Clause) string {
	var expr string
	switch c.Kind {
	case db.ClauseExact:
		v := strings.ToLower(strings.TrimSpace(c.Text))
		if v == "" {
			return ""
		}
		expr = buildTagFilter(c.Field, v)
	case db.ClauseInfix:
		expr = buildTextClause(c.Field, c.Text, infixToken)
	default:
		expr = buildTextClause(c.Field, c.Text, func(tok string) string {
			return autocompleteToken(tok, c.Fuzziness)
		})
	}
	if expr == "" {
		return ""
	}

	if w := c.EffectiveWeight(); w != 1 {
		return fmt.Sprintf("(%s) => { $weight: %s; }", expr, strconv.FormatFloat(w, 'f', 1, 64))
	}
	return expr
}

func buildTextClause(field, text string, render func(string) string) string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return ""
	}
	rendered := make([]string, len(tokens))
	for i, tok := range tokens {
		rendered[i] = render(tok)
	}
	return fmt.Sprintf("@%s:(%s)", field, strings.Join(rendered, " "))
}

// autocompleteToken matches tok as a prefix and, for tokens of three or more
// runes, within the given Levenshtein distance.
func autocompleteToken(tok string, fuzziness int) string {
	n := len([]rune(tok))
	if n < 2 {
		return tok
	}
	if fuzziness <= 0 || n < 3 {
		return tok + "*"
	}
	if fuzziness > 3 {
		fuzziness = 3
	}
	pct := strings.Repeat("%", fuzziness)
	return fmt.Sprintf("(%s%s%s|%s*)", pct, tok, pct, tok)
}

func infixToken(tok string) string {
	if len([]rune(tok)) < 2 {
		return tok
	}
	return "*" + tok + "*"
}

// tokenize lowercases s and splits it the way the default RediSearch
// tokenizer does: on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string

	for _, cond := range expr.Must() {
		parts = append(parts, buildTagFilter(cond.Key(), cond.Match()))
	}

	if should := expr.Should(); len(should) > 0 {
		alts := make([]string, 0, len(should))
		for _, cond := range should {
			alts = append(alts, buildTagFilter(cond.Key(), cond.Match()))
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}

	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildTagFilter(cond.Key(), cond.Match()))
	}

	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"/", "\\/",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"|", "\\|",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"?", "\\?",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
