package server

// indexHTML is the client page. It mirrors the session's body into
// #root and forwards platform input as input lines.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>lensui demo</title>
<style>
body { margin: 0; font-family: sans-serif; }
.window { background: #eee; border: 1px solid #444; }
.window-title { background: #448; color: #fff; cursor: move; justify-content: space-between; padding: 2px 4px; }
.window-body { padding: 8px; }
</style>
</head>
<body>
<div id="root"></div>
<script>
const root = document.getElementById("root");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (m) => { root.innerHTML = m.data; };

const quote = (s) => '"' + s.replace(/\\/g, "\\\\").replace(/"/g, '\\"').replace(/\n/g, "\\n").replace(/\t/g, "\\t") + '"';

const pathOf = (node) => {
  const parts = [];
  while (node && node !== root) {
    parts.unshift(Array.prototype.indexOf.call(node.parentNode.childNodes, node));
    node = node.parentNode;
  }
  return node === root ? parts.join(".") : null;
};

const send = (line) => { if (ws.readyState === WebSocket.OPEN) ws.send(line); };

for (const name of ["click", "input", "change", "mousedown", "dragstart", "dragend", "drop"]) {
  root.addEventListener(name, (e) => {
    const path = pathOf(e.target);
    if (path === null) return;
    let line = name + " path=" + quote(path) + " x=" + e.clientX + " y=" + e.clientY;
    if (e.target.value !== undefined) line += " value=" + quote(String(e.target.value));
    send(line);
  }, true);
}
root.addEventListener("dragover", (e) => e.preventDefault());
root.addEventListener("scroll", (e) => {
  const path = pathOf(e.target);
  if (path !== null) send("scroll path=" + quote(path) + " scrolltop=" + Math.round(e.target.scrollTop));
}, true);
window.addEventListener("mousemove", (e) => send("mousemove x=" + e.clientX + " y=" + e.clientY));
window.addEventListener("mouseup", (e) => send("mouseup x=" + e.clientX + " y=" + e.clientY));
const resize = () => send("resize w=" + window.innerWidth + " h=" + window.innerHeight);
window.addEventListener("resize", resize);
ws.onopen = resize;
</script>
</body>
</html>
`
