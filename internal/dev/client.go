package dev

import (
	"encoding/json"
	"strings"
)

// clientScript keeps the mount element in sync with the server and
// forwards input events on model-bound nodes. %MOUNT% and %MODEL% are
// replaced with JSON string literals.
const clientScript = `
<script>
(function() {
    'use strict';

    var mountSelector = %MOUNT%;
    var modelAttr = %MODEL%;
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function mount() {
        return document.querySelector(mountSelector) || document.getElementsByTagName(mountSelector)[0];
    }

    function targetIndex(el) {
        var nodes = document.querySelectorAll('[' + modelAttr + ']');
        for (var i = 0; i < nodes.length; i++) {
            if (nodes[i] === el) {
                return i;
            }
        }
        return -1;
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/_vbind/live');

        ws.onopen = function() {
            console.log('[vbind] Live connected');
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'render':
                    var root = mount();
                    if (!root) {
                        return;
                    }
                    var active = document.activeElement;
                    var index = active ? targetIndex(active) : -1;
                    var caret = active && active.selectionStart;
                    root.innerHTML = msg.html || '';
                    if (index >= 0) {
                        var next = document.querySelectorAll('[' + modelAttr + ']')[index];
                        if (next) {
                            next.focus();
                            if (caret != null && next.setSelectionRange) {
                                next.setSelectionRange(caret, caret);
                            }
                        }
                    }
                    break;

                case 'error':
                    console.error('[vbind]', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            console.log('[vbind] Connection lost, reconnecting in', reconnectDelay + 'ms');
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    document.addEventListener('input', function(e) {
        var index = targetIndex(e.target);
        if (index < 0 || !ws || ws.readyState !== WebSocket.OPEN) {
            return;
        }
        ws.send(JSON.stringify({type: 'input', target: index, value: e.target.value}));
    });

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`

// ClientScript returns the live client script for a mount selector and
// directive prefix.
func ClientScript(mount, prefix string) string {
	return strings.NewReplacer(
		"%MOUNT%", jsString(mount),
		"%MODEL%", jsString(prefix+"model"),
	).Replace(clientScript)
}

// injectScript inserts script before </body>, or appends it.
func injectScript(page, script string) string {
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + script + page[i:]
	}
	return page + script
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
