package models

import (
	"regexp"
	"strings"
)

// Topic 是辯論題目的結構化形式
// 原始字串格式為 "<主題>|<A 選項> vs <B 選項>"，沒有 "|" 時整串視為選項組
type Topic struct {
	Main    string
	OptionA string
	OptionB string
}

var topicVsPattern = regexp.MustCompile(`(?i)\bvs\b`)

// ParseTopic 解析題目字串，"vs" 不分大小寫
func ParseTopic(raw string) Topic {
	var t Topic

	pair := raw
	if main, rest, ok := strings.Cut(raw, "|"); ok {
		t.Main = strings.TrimSpace(main)
		pair = rest
	}

	if loc := topicVsPattern.FindStringIndex(pair); loc != nil {
		t.OptionA = strings.TrimSpace(pair[:loc[0]])
		t.OptionB = strings.TrimSpace(pair[loc[1]:])
	} else {
		t.OptionA = strings.TrimSpace(pair)
	}

	return t
}
