package main

const loginHTML = `<!doctype html>
<html lang="pt">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>HatRoom</title>
  <style>
    :root { --bg:#0b1224; --panel:#0f172a; --accent:#38bdf8; --muted:#94a3b8; --line:rgba(255,255,255,0.1); }
    body { margin:0; font-family: "Space Grotesk", "Segoe UI", sans-serif; background:
      radial-gradient(circle at 15% 15%, rgba(56,189,248,0.18), transparent 40%),
      radial-gradient(circle at 85% 5%, rgba(14,165,233,0.12), transparent 35%),
      var(--bg);
      color:#e2e8f0; display:flex; align-items:center; justify-content:center; min-height:100vh; padding:24px; }
    .card { background:linear-gradient(160deg, rgba(15,23,42,0.96), rgba(2,6,23,0.96)); border:1px solid var(--line); border-radius:18px; padding:36px 40px; max-width:520px; width:100%; box-shadow:0 24px 70px rgba(0,0,0,0.4); }
    h1 { margin:0 0 12px; font-size:30px; color:var(--accent); }
    p { margin:8px 0; line-height:1.5; color:var(--muted); }
    form { display:grid; gap:14px; margin-top:18px; width:100%; justify-items:stretch; }
    .field { width:100%; }
    label { display:block; margin-bottom:6px; font-size:13px; color:var(--muted); letter-spacing:0.3px; text-transform:uppercase; }
    input, select { display:block; width:100%; box-sizing:border-box; background:#0b1224; border:1px solid var(--line); color:#e2e8f0; border-radius:10px; padding:10px 12px; font-size:15px; }
    button { width:100%; box-sizing:border-box; border:0; border-radius:10px; padding:12px 14px; font-weight:600; background:var(--accent); color:#062238; cursor:pointer; }
    .error { margin-top:12px; padding:10px 12px; border-radius:10px; border:1px solid rgba(248,113,113,0.4); background:rgba(248,113,113,0.12); color:#fecaca; font-size:13px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>HatRoom</h1>
    <p>Escolha um nome, uma sala e a cor do seu chapéu para entrar.</p>
    {{ERROR}}
    <form id="join-form" method="post" action="/join">
      <div class="field">
        <label for="username">Nome</label>
        <input id="username" name="name" value="{{NAME}}" autocomplete="username">
      </div>
      <div class="field">
        <label for="room">Sala</label>
        <input id="room" name="room" autocomplete="off">
      </div>
      <div class="field">
        <label for="hat_color">Cor do Chapéu</label>
        <select id="hat_color" name="hat_color">
          {{OPTIONS}}
        </select>
      </div>
      <button type="submit">Entrar</button>
    </form>
  </div>
  <script>
    document.addEventListener('DOMContentLoaded', function () {
      var form = document.getElementById('join-form');
      var field = document.getElementById('username');

      if (document.querySelector('.error')) {
        field.focus();
      }

      form.addEventListener('submit', function (event) {
        event.preventDefault();
        var username = field.value.trim();
        if (username === '') {
          alert('Por favor, insira um nome de usuário.');
          field.focus();
          return;
        }
        alert('Tentativa de Login com Usuário: ' + username);
        field.value = username;
        form.submit();
      });
    });
  </script>
</body>
</html>
`

const roomHTML = `<!doctype html>
<html lang="pt">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>HatRoom — Sala</title>
  <style>
    :root { --bg:#0b1224; --accent:#38bdf8; --muted:#94a3b8; --line:rgba(255,255,255,0.1); }
    body { margin:0; font-family: "Space Grotesk", "Segoe UI", sans-serif; background:var(--bg); color:#e2e8f0; }
    header { display:flex; align-items:center; gap:12px; padding:12px 18px; border-bottom:1px solid var(--line); }
    header h1 { margin:0; font-size:18px; color:var(--accent); }
    header span { color:var(--muted); font-size:13px; }
    #arena { position:relative; width:100vw; height:calc(100vh - 49px); overflow:hidden; }
    .player { position:absolute; width:64px; text-align:center; transition:left 80ms linear, top 80ms linear; }
    .player img { width:48px; height:48px; }
    .player .tag { font-size:12px; color:#e2e8f0; text-shadow:0 1px 2px rgba(0,0,0,0.8); }
  </style>
</head>
<body data-room="{{ROOM}}" data-name="{{NAME}}" data-color="{{COLOR}}">
  <header>
    <h1>HatRoom</h1>
    <span id="room-label"></span>
    <span><a href="/" style="color:var(--accent)">sair</a></span>
  </header>
  <div id="arena"></div>
  <script>
    (function () {
      var ds = document.body.dataset;
      var room = ds.room;
      var name = ds.name;
      var color = ds.color;
      document.getElementById('room-label').textContent = 'Sala: ' + room;

      var arena = document.getElementById('arena');
      var nodes = {};
      var myId = null;
      var myX = 80, myY = 80;

      var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      var sock = new WebSocket(proto + location.host + '/ws');

      function send(event, data) {
        if (sock.readyState === WebSocket.OPEN) {
          sock.send(JSON.stringify({ event: event, data: data }));
        }
      }

      function upsert(id, p) {
        var node = nodes[id];
        if (!node) {
          node = document.createElement('div');
          node.className = 'player';
          node.innerHTML = '<img alt=""><div class="tag"></div>';
          arena.appendChild(node);
          nodes[id] = node;
          node.querySelector('img').src = '/avatar/' + encodeURIComponent(id) + '/meio.svg';
        }
        node.style.left = (p.x || 0) + 'px';
        node.style.top = (p.y || 0) + 'px';
        if (p.name) {
          node.querySelector('.tag').textContent = p.name;
        }
      }

      function remove(id) {
        if (nodes[id]) {
          nodes[id].remove();
          delete nodes[id];
        }
      }

      sock.onopen = function () {
        send('join', { room: room, name: name, color: color, x: myX, y: myY });
      };

      sock.onmessage = function (raw) {
        var msg = JSON.parse(raw.data);
        var d = msg.data || {};
        if (msg.event === 'joined') {
          myId = d.player_id;
          Object.keys(d.players || {}).forEach(function (id) {
            upsert(id, d.players[id]);
          });
        } else if (msg.event === 'player_joined') {
          upsert(d.player_id, d);
        } else if (msg.event === 'player_moved') {
          upsert(d.player_id, d);
        } else if (msg.event === 'player_left') {
          remove(d.player_id);
        }
      };

      document.addEventListener('keydown', function (e) {
        if (!myId) { return; }
        var step = 12;
        var facingRight = null;
        if (e.key === 'ArrowLeft') { myX -= step; facingRight = false; }
        else if (e.key === 'ArrowRight') { myX += step; facingRight = true; }
        else if (e.key === 'ArrowUp') { myY -= step; }
        else if (e.key === 'ArrowDown') { myY += step; }
        else { return; }
        upsert(myId, { x: myX, y: myY, name: name });
        send('pos_update', { room: room, player_id: myId, x: myX, y: myY, facingRight: facingRight });
      });

      window.addEventListener('beforeunload', function () {
        if (myId) {
          send('leave', { room: room, player_id: myId });
        }
      });
    })();
  </script>
</body>
</html>
`
