package scrape

import "strings"

const (
	// groupInviteHost is WhatsApp's dedicated group-invite domain.
	groupInviteHost = "chat.whatsapp.com"
	// messagingHost serves both individual chats and group funnels.
	messagingHost = "api.whatsapp.com"
	// groupKeyword marks api.whatsapp.com links that funnel into a group.
	groupKeyword = "grupo"
)

// IsGroupLink reports whether a normalized URL points at a WhatsApp group
// rather than an individual chat. Heuristic allow-list: missed real group
// links are acceptable, false positives should be rare.
func IsGroupLink(link string) bool {
	l := strings.ToLower(link)
	if strings.Contains(l, groupInviteHost) {
		return true
	}
	if strings.Contains(l, messagingHost) && strings.Contains(l, groupKeyword) {
		return true
	}
	return false
}
