package browser

import (
	"encoding/json"
	"fmt"

	"ui_resolver/domain/entities"
)

// snapshotJS collects interactive elements, descending into open shadow
// roots, and returns them as a JSON string
const snapshotJS = `() => {
	const selectors = 'button, a, input, select, textarea, label, [role], [onclick], [data-testid], [data-qa], [aria-label], [id]';
	const elements = [];

	const describe = (el) => {
		const tag = el.tagName.toLowerCase();
		if (el.getAttribute('data-testid')) return '[data-testid="' + el.getAttribute('data-testid') + '"]';
		if (el.getAttribute('data-qa')) return '[data-qa="' + el.getAttribute('data-qa') + '"]';
		if (el.id) return '#' + el.id;
		if (el.getAttribute('name')) return tag + '[name="' + el.getAttribute('name') + '"]';
		if (el.getAttribute('aria-label')) return tag + '[aria-label="' + el.getAttribute('aria-label') + '"]';
		let classNameStr = '';
		if (typeof el.className === 'string') {
			classNameStr = el.className;
		} else if (el.className && typeof el.className.baseVal === 'string') {
			classNameStr = el.className.baseVal;
		}
		const classes = classNameStr.split(' ').filter(c => c).slice(0, 2).join('.');
		return classes ? tag + '.' + classes : tag;
	};

	const visit = (root, inShadow) => {
		root.querySelectorAll('*').forEach(el => {
			if (el.shadowRoot) visit(el.shadowRoot, true);
			if (!el.matches(selectors)) return;

			const rect = el.getBoundingClientRect();
			const style = window.getComputedStyle(el);
			const visible = rect.width > 0 && rect.height > 0 &&
				style.display !== 'none' && style.visibility !== 'hidden';

			const attributes = {};
			Array.from(el.attributes).forEach(attr => {
				if (attr.name.startsWith('data-') || ['id', 'name', 'type', 'role', 'aria-label', 'placeholder', 'class'].includes(attr.name)) {
					attributes[attr.name] = attr.value;
				}
			});

			const text = (el.value || el.placeholder || el.textContent || '').trim();
			elements.push({
				tag: el.tagName.toLowerCase(),
				selector: describe(el),
				text: text.substring(0, 120),
				attributes: attributes,
				visible: visible,
				inShadow: inShadow
			});
		});
	};

	visit(document, false);
	return JSON.stringify(elements.slice(0, 400));
}`

// seleniumSnapshotJS wraps snapshotJS for drivers that execute a script body
const seleniumSnapshotJS = "return (" + snapshotJS + ")();"

// formatSnapshot decodes the JSON produced by snapshotJS
func formatSnapshot(url, title, raw string) (string, error) {
	var elements []entities.PageElement
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return "", fmt.Errorf("decode page snapshot: %w", err)
	}
	return entities.FormatSnapshot(url, title, elements, 0), nil
}
