package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	slugSuffixLen = 8
)

// GenerateSlug chuẩn hoá input thành slug ASCII.
// "Nguyễn Nhật Ánh" → "nguyen-nhat-anh", "Hello,  World!" → "hello-world"
func GenerateSlug(input string) string {
	// Step 1: Bỏ dấu (NFD rồi loại combining marks)
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase
	lower := strings.ToLower(ascii)

	// Step 3: Mọi chuỗi ký tự không phải a-z0-9 thành một hyphen
	hyphenated := nonSlugChars.ReplaceAllString(lower, "-")

	// Step 4: Trim leading/trailing hyphens
	return strings.Trim(hyphenated, "-")
}

// GenerateUniqueSlug nối slug của title với 8 ký tự hex lấy từ một UUID ngẫu nhiên.
// Luôn có dạng "<slug>-<hex8>", title không có ký tự slug nào cho ra "-<hex8>".
// Không retry khi trùng: không gian suffix 16^8 đủ lớn, unique constraint
// ở DB sẽ báo lỗi nếu va chạm thật sự xảy ra.
func GenerateUniqueSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
	return GenerateSlug(title) + "-" + suffix
}

// RemoveDiacritics bỏ dấu của mọi ký tự Latin (tất cả các tone của "a" => "a").
// "đ"/"Đ" không decompose theo Unicode nên được map riêng.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, input)
	if err != nil {
		result = input
	}

	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(result)
}
