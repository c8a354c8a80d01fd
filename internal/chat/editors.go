package chat

// openReply points the reply editor at a node. Opening on the node that
// already owns it toggles it closed; opening elsewhere tears the previous
// editor down first — there is never more than one reply editor, and no
// intermediate state with two open.
func (m *Model) openReply(messageID int64) {
	if m.replyOpenFor == messageID {
		m.closeReply()
		return
	}
	if m.replyOpenFor != 0 {
		m.closeReply()
	}
	if m.editFocus != 0 {
		m.blurEdit()
	}
	m.replyOpenFor = messageID
	m.replyEditor.Reset()
	m.replyEditor.Focus()
	m.composer.Blur()
	m.refreshViewport(false)
}

// closeReply discards the pending reply target and draft.
func (m *Model) closeReply() {
	m.replyOpenFor = 0
	m.replyEditor.Reset()
	m.replyEditor.Blur()
	if m.editFocus == 0 {
		m.composer.Focus()
	}
	m.refreshViewport(false)
}

// openEdit toggles the edit editor on a node the viewer authored. Unlike
// the reply editor, edit editors are per-node: opening one leaves editors
// on other nodes open, only stealing focus.
func (m *Model) openEdit(messageID int64) {
	if _, open := m.editEditors[messageID]; open {
		m.closeEdit(messageID)
		return
	}
	msg, ok := m.engine.Get(messageID)
	if !ok || msg.Username != m.user.Username {
		return
	}

	editor := newEditor("")
	editor.SetValue(msg.Body)
	m.editEditors[messageID] = &editor
	m.focusEdit(messageID)
	m.refreshViewport(false)
}

// closeEdit discards one node's edit editor.
func (m *Model) closeEdit(messageID int64) {
	delete(m.editEditors, messageID)
	if m.editFocus == messageID {
		m.editFocus = 0
		if m.replyOpenFor != 0 {
			m.replyEditor.Focus()
		} else {
			m.composer.Focus()
		}
	}
	m.refreshViewport(false)
}

func (m *Model) focusEdit(messageID int64) {
	m.blurEdit()
	editor, ok := m.editEditors[messageID]
	if !ok {
		return
	}
	m.editFocus = messageID
	editor.Focus()
	m.composer.Blur()
	m.replyEditor.Blur()
}

func (m *Model) blurEdit() {
	if editor, ok := m.editEditors[m.editFocus]; ok {
		editor.Blur()
	}
	m.editFocus = 0
}
