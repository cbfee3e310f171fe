// Package pagescript holds the in-page JavaScript shared by the browser
// engines. Every script returns a JSON string so both engines decode results
// the same way regardless of how they marshal evaluation values.
package pagescript

import (
	"encoding/json"
	"fmt"

	"github.com/user/eventshot/pkg/ports"
)

// ElementBoxes returns a script listing the document-space bounding boxes of
// visible elements matching selector.
func ElementBoxes(selector string) string {
	// A JSON string literal is a valid JS string literal.
	sel, _ := json.Marshal(selector)
	return fmt.Sprintf(`(function() {
	var out = [];
	var nodes = document.querySelectorAll(%s);
	for (var i = 0; i < nodes.length; i++) {
		var el = nodes[i];
		var style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') {
			continue;
		}
		var r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) {
			continue;
		}
		out.push({
			x: r.left + window.scrollX,
			y: r.top + window.scrollY,
			width: r.width,
			height: r.height
		});
	}
	return JSON.stringify(out);
})()`, sel)
}

// DecodeBoxes decodes the result of an ElementBoxes script.
func DecodeBoxes(raw string) ([]ports.Box, error) {
	var boxes []ports.Box
	if err := json.Unmarshal([]byte(raw), &boxes); err != nil {
		return nil, fmt.Errorf("decode element boxes: %w", err)
	}
	return boxes, nil
}

// DismissCookieBanner returns a script that clicks the first visible element
// matching one of selectors, else the first visible button-like element whose
// trimmed text equals one of labels, ignoring case. It yields "true" when
// something was clicked.
func DismissCookieBanner(selectors, labels []string) (string, error) {
	sel, err := json.Marshal(nonNil(selectors))
	if err != nil {
		return "", err
	}
	lab, err := json.Marshal(nonNil(labels))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(function(selectors, labels) {
	function visible(el) {
		var r = el.getBoundingClientRect();
		var style = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && style.visibility !== 'hidden' && style.display !== 'none';
	}
	for (var i = 0; i < selectors.length; i++) {
		var nodes;
		try {
			nodes = document.querySelectorAll(selectors[i]);
		} catch (e) {
			continue;
		}
		for (var j = 0; j < nodes.length; j++) {
			if (visible(nodes[j])) {
				nodes[j].click();
				return JSON.stringify(true);
			}
		}
	}
	var wanted = labels.map(function(l) { return l.trim().toLowerCase(); });
	var buttons = document.querySelectorAll('button, [role="button"], a, input[type="button"], input[type="submit"]');
	for (var k = 0; k < buttons.length; k++) {
		var b = buttons[k];
		var text = (b.innerText || b.value || '').trim().toLowerCase();
		if (wanted.indexOf(text) >= 0 && visible(b)) {
			b.click();
			return JSON.stringify(true);
		}
	}
	return JSON.stringify(false);
})(%s, %s)`, sel, lab), nil
}

// DecodeBool decodes a JSON boolean script result.
func DecodeBool(raw string) (bool, error) {
	var v bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return false, fmt.Errorf("decode boolean: %w", err)
	}
	return v, nil
}

// ScrollTo returns a script scrolling the window to (x, y).
func ScrollTo(x, y int) string {
	return fmt.Sprintf(`(function() { window.scrollTo(%d, %d); return JSON.stringify(true); })()`, x, y)
}

// ScrollOffset is a script reporting the current scroll position.
const ScrollOffset = `JSON.stringify({x: Math.round(window.scrollX), y: Math.round(window.scrollY)})`

// Offset is a decoded ScrollOffset result.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DecodeOffset decodes a ScrollOffset result.
func DecodeOffset(raw string) (Offset, error) {
	var o Offset
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return Offset{}, fmt.Errorf("decode scroll offset: %w", err)
	}
	return o, nil
}

// PageInfo is a script reporting title, URL and scroll dimensions.
const PageInfo = `JSON.stringify({
	title: document.title,
	url: window.location.href,
	scrollHeight: document.documentElement.scrollHeight,
	scrollWidth: document.documentElement.scrollWidth
})`

// DecodePageInfo decodes a PageInfo result.
func DecodePageInfo(raw string) (*ports.PageInfo, error) {
	var info ports.PageInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("decode page info: %w", err)
	}
	return &info, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
