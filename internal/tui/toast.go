package tui

import tea "github.com/charmbracelet/bubbletea"

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

// showToast replaces any visible toast and schedules its expiry.
func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	m.toast = &toast{id: m.toastSeq, kind: kind, text: text}
	return expireToast(m.deps.UI.ToastDuration, m.toastSeq)
}

func (m Model) toastView() string {
	if m.toast == nil {
		return ""
	}
	switch m.toast.kind {
	case toastSuccess:
		return m.styles.toastSuccess.Render(m.toast.text)
	case toastError:
		return m.styles.toastError.Render(m.toast.text)
	default:
		return m.styles.toastInfo.Render(m.toast.text)
	}
}
