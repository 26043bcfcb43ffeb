package server

const indexPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>treewalk</title>
<style>
  body { font-family: sans-serif; margin: 2rem; }
  form { margin-bottom: 1rem; }
  #status { color: #555; margin-left: 1rem; }
  #diagram svg { border: 1px solid #ddd; }
</style>
</head>
<body>
<form id="search">
  <input name="value" placeholder="value" autocomplete="off" autofocus>
  <button type="submit">Search</button>
  <button type="button" id="refresh">Refresh</button>
  <span id="status"></span>
</form>
<div id="diagram"></div>
<script>
const diagram = document.getElementById("diagram");
const status = document.getElementById("status");

async function load() {
  const resp = await fetch("/api/diagram.svg", {cache: "no-store"});
  diagram.innerHTML = await resp.text();
}

async function post(url, body) {
  const resp = await fetch(url, {method: "POST", body: body});
  const data = await resp.json().catch(() => ({}));
  status.textContent = resp.ok ? "" : (data.error || resp.statusText);
  return data;
}

document.getElementById("search").addEventListener("submit", (e) => {
  e.preventDefault();
  post("/api/search", new FormData(e.target));
});
document.getElementById("refresh").addEventListener("click", () => post("/api/refresh"));

const events = new EventSource("/api/events");
events.addEventListener("replace", load);
events.addEventListener("clear", () => { diagram.innerHTML = ""; });
events.addEventListener("paint", (e) => {
  const ev = JSON.parse(e.data);
  const el = document.getElementById(ev.elementId);
  if (!el) { load(); return; }
  el.setAttribute("fill", ev.fill);
  el.dataset.state = ev.state;
});
load();
</script>
</body>
</html>
`
