package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"finqa_backend/internal/feature/financials/domain"
)

// allowedTable は外部フィルタクエリが参照してよい唯一のテーブルです。
const allowedTable = "financials"

// forbiddenKeywords はデータ変更やスキーマ操作を示すキーワードです。
// これらを含むクエリはストアに到達する前に拒否されます。
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create", "replace",
	"truncate", "attach", "detach", "pragma", "vacuum", "grant", "revoke",
}

var (
	keywordPatterns = compileKeywordPatterns()
	tableRefPattern = regexp.MustCompile(`(?i)\b(?:from|join)\s+([(]|[\w".]+)`)
)

func compileKeywordPatterns() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, 0, len(forbiddenKeywords))
	for _, kw := range forbiddenKeywords {
		ps = append(ps, regexp.MustCompile(`(?i)\b`+kw+`\b`))
	}
	return ps
}

// ValidateReadOnlyQuery はフィルタクエリが安全な読み取り専用SELECTであることを検証します。
// 検証内容:
//   - 単一ステートメントであること（複文セパレータの拒否）
//   - SELECTで始まること
//   - データ変更キーワードを含まないこと
//   - FROM/JOIN の参照先が financials テーブルのみであること
//
// 違反した場合は domain.ErrUnsafeQuery をラップしたエラーを返します。
func ValidateReadOnlyQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Errorf("%w: empty query", domain.ErrUnsafeQuery)
	}

	// 末尾の1つのセミコロンは許容し、それ以外の複文は拒否する
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: multiple statements are not allowed", domain.ErrUnsafeQuery)
	}

	if !strings.HasPrefix(strings.ToLower(q), "select") {
		return fmt.Errorf("%w: only SELECT statements are allowed", domain.ErrUnsafeQuery)
	}

	for i, p := range keywordPatterns {
		if p.MatchString(q) {
			return fmt.Errorf("%w: statement contains forbidden keyword %q", domain.ErrUnsafeQuery, forbiddenKeywords[i])
		}
	}

	for _, m := range tableRefPattern.FindAllStringSubmatch(q, -1) {
		ref := strings.Trim(m[1], `"`)
		if ref == "(" {
			// サブクエリ。内側のFROMも同じスキャンで検証される
			continue
		}
		if !strings.EqualFold(ref, allowedTable) {
			return fmt.Errorf("%w: table %q is not accessible", domain.ErrUnsafeQuery, ref)
		}
	}

	return nil
}
