// internal/browser/bootstrap.go
package browser

// CDP binding names the page script calls back through.
const (
	mutatedBinding = "__lpMutated"
	hotkeyBinding  = "__lpHotkey"
	bulkBinding    = "__lpBulk"
)

// bootstrapJS is installed on every new document and evaluated once against
// the document present at attach time. It wires three things back into the
// tool: a MutationObserver over the whole subtree, the Ctrl+Shift+P manual
// trigger on the capturing phase (so it preempts host handlers and satisfies
// activation policies that require a trusted gesture), and delegated click
// handling for the injected helper controls.
const bootstrapJS = `(() => {
	if (window.__lpBootstrapped) { return; }
	window.__lpBootstrapped = true;

	const call = (name) => {
		const fn = window[name];
		if (typeof fn === 'function') { try { fn(''); } catch (e) {} }
	};

	const observe = () => {
		new MutationObserver(() => call('__lpMutated'))
			.observe(document.documentElement, { childList: true, subtree: true });
	};
	if (document.documentElement) { observe(); }
	else { document.addEventListener('DOMContentLoaded', observe); }

	document.addEventListener('keydown', (ev) => {
		if (ev.ctrlKey && ev.shiftKey && (ev.key === 'P' || ev.key === 'p')) {
			ev.preventDefault();
			ev.stopPropagation();
			call('__lpHotkey');
		}
	}, true);

	document.addEventListener('click', (ev) => {
		const target = ev.target && ev.target.closest
			? ev.target.closest('[data-lp-set],[data-lp-copy],[data-lp-bulk]')
			: null;
		if (!target) { return; }
		ev.preventDefault();

		if (target.dataset.lpSet !== undefined) {
			for (const pair of target.dataset.lpSet.split(';')) {
				const [id, value] = pair.split('=');
				const field = document.getElementById(id);
				if (!field) { continue; }
				field.value = value;
				field.dispatchEvent(new Event('input', { bubbles: true }));
				field.dispatchEvent(new Event('change', { bubbles: true }));
			}
		} else if (target.dataset.lpCopy !== undefined) {
			if (navigator.clipboard) {
				navigator.clipboard.writeText(target.dataset.lpCopy).catch(() => {});
			}
		} else if (target.dataset.lpBulk !== undefined) {
			call('__lpBulk');
		}
	}, true);
})();`
