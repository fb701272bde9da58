package utils

import "strings"

// ParseTags tách chuỗi tags phân cách bởi dấu phẩy, trim và bỏ phần tử rỗng.
// " go, ,web " → ["go", "web"]
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NormalizeTags là dạng lưu trữ: các tag đã trim, nối bằng ","
func NormalizeTags(raw string) string {
	return strings.Join(ParseTags(raw), ",")
}
