package live

// indexHTML is the canvas client. It replays frame display lists onto a 2D
// context and forwards pointer, wheel and key input as JSON events.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>synapse</title>
<style>
  html, body { margin: 0; height: 100%; overflow: hidden; background: #0b0e14; font-family: sans-serif; }
  canvas { display: block; width: 100vw; height: 100vh; }
  #bar { position: fixed; top: 8px; left: 8px; display: flex; gap: 8px; color: #eaeef3; font-size: 12px; }
  #bar input { background: #1a1f2b; color: #eaeef3; border: 1px solid #334; padding: 2px 6px; }
  #popup { position: fixed; display: none; background: #1a1f2b; color: #eaeef3; border: 1px solid #6ea8fe;
           padding: 6px 10px; border-radius: 4px; font-size: 13px; pointer-events: none; }
  #status { position: fixed; bottom: 8px; left: 8px; color: #94a3b8; font-size: 11px; }
</style>
</head>
<body>
<canvas id="view"></canvas>
<div id="bar">
  <input id="search" placeholder="search (/)">
  <label>threshold <input id="threshold" type="range" min="0" max="1" step="0.05" value="0"></label>
</div>
<div id="popup"></div>
<div id="status"></div>
<script>
(function () {
  const canvas = document.getElementById('view');
  const ctx = canvas.getContext('2d');
  const popup = document.getElementById('popup');
  const status = document.getElementById('status');
  let background = '#0b0e14';

  const id = sessionStorage.getItem('synapse-session') || '';
  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + '/synapse/live/' + id);

  function send(ev) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(ev));
  }

  function resize() {
    const dpr = window.devicePixelRatio || 1;
    canvas.width = innerWidth * dpr;
    canvas.height = innerHeight * dpr;
    ctx.setTransform(dpr, 0, 0, dpr, 0, 0);
    send({ type: 'resize', width: innerWidth, height: innerHeight });
  }

  function replay(ops) {
    const dpr = window.devicePixelRatio || 1;
    for (const op of ops) {
      const x = op.x || 0, y = op.y || 0;
      switch (op.k) {
      case 'clear':
        ctx.setTransform(dpr, 0, 0, dpr, 0, 0);
        ctx.fillStyle = background;
        ctx.fillRect(0, 0, canvas.width, canvas.height);
        break;
      case 'save': ctx.save(); break;
      case 'restore': ctx.restore(); break;
      case 'translate': ctx.translate(x, y); break;
      case 'scale': ctx.scale(x, x); break;
      case 'line':
        ctx.beginPath();
        ctx.strokeStyle = op.stroke.color;
        ctx.lineWidth = op.stroke.width;
        ctx.globalAlpha = op.stroke.opacity;
        ctx.setLineDash(op.stroke.dash || []);
        ctx.moveTo(x, y);
        ctx.lineTo(op.x2 || 0, op.y2 || 0);
        ctx.stroke();
        ctx.globalAlpha = 1;
        ctx.setLineDash([]);
        break;
      case 'circle':
        ctx.beginPath();
        ctx.arc(x, y, op.r, 0, Math.PI * 2);
        ctx.fillStyle = op.fill;
        ctx.fill();
        if (op.stroke) {
          ctx.strokeStyle = op.stroke.color;
          ctx.lineWidth = op.stroke.width;
          ctx.stroke();
        }
        break;
      case 'text':
        ctx.fillStyle = op.font.color;
        ctx.font = op.font.size + 'px sans-serif';
        ctx.textAlign = 'center';
        ctx.fillText(op.text, x, y);
        break;
      }
    }
  }

  ws.onopen = resize;
  ws.onclose = function () { status.textContent = 'disconnected'; };
  ws.onmessage = function (e) {
    const msg = JSON.parse(e.data);
    switch (msg.type) {
    case 'hello':
      sessionStorage.setItem('synapse-session', msg.session);
      background = msg.background || background;
      break;
    case 'frame':
      replay(msg.ops || []);
      if (msg.popup) {
        popup.style.display = 'block';
        popup.style.left = (msg.popup.x + 12) + 'px';
        popup.style.top = (msg.popup.y + 12) + 'px';
        popup.textContent = msg.popup.label;
      } else {
        popup.style.display = 'none';
      }
      status.textContent = 'zoom ' + msg.camera.Zoom.toFixed(2) + '  alpha ' + (msg.alpha || 0).toFixed(3);
      break;
    }
  };

  function pos(e) { return { x: e.clientX, y: e.clientY }; }
  canvas.addEventListener('pointerdown', function (e) {
    canvas.setPointerCapture(e.pointerId);
    send(Object.assign({ type: 'pointerdown' }, pos(e)));
  });
  canvas.addEventListener('pointermove', function (e) { send(Object.assign({ type: 'pointermove' }, pos(e))); });
  canvas.addEventListener('pointerup', function () { send({ type: 'pointerup' }); });
  canvas.addEventListener('pointerleave', function () { send({ type: 'pointerleave' }); });
  canvas.addEventListener('dblclick', function (e) { send(Object.assign({ type: 'dblclick' }, pos(e))); });
  canvas.addEventListener('wheel', function (e) {
    if (!e.ctrlKey && !e.metaKey) return;
    e.preventDefault();
    send({ type: 'wheel', deltaY: e.deltaY, ctrl: e.ctrlKey, meta: e.metaKey });
  }, { passive: false });
  window.addEventListener('resize', resize);

  const search = document.getElementById('search');
  search.addEventListener('input', function () { send({ type: 'search', query: search.value }); });
  const threshold = document.getElementById('threshold');
  threshold.addEventListener('input', function () { send({ type: 'threshold', value: parseFloat(threshold.value) }); });

  window.addEventListener('keydown', function (e) {
    if (document.activeElement === search) {
      if (e.key === 'Escape') search.blur();
      return;
    }
    switch (e.key) {
    case '/': e.preventDefault(); search.focus(); break;
    case 'r': send({ type: 'reset' }); break;
    case 'f': send({ type: 'fit' }); break;
    case 'Escape': send({ type: 'closePopup' }); break;
    }
  });
})();
</script>
</body>
</html>
`
