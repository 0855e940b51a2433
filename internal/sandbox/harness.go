package sandbox

// harnessSource is the isolation harness evaluated inside the node
// subprocess. It speaks newline-delimited JSON on stdin/stdout:
// inbound {id, code}, outbound {id, type: "log"|"result"|"error", ...}.
// Egress-capable globals are rebound to undefined before user code runs,
// and a console proxy forwards log calls to the host instead of writing
// anywhere real.
const harnessSource = `
const readline = require("readline");
const stdout = process.stdout;

const serialize = (obj) => {
    try {
        const seen = new WeakSet();
        const json = JSON.stringify(obj, function (k, v) {
            if (typeof v === "bigint") return v.toString() + "n";
            if (typeof v === "function") return "[Function " + (v.name || "anonymous") + "]";
            if (typeof v === "symbol") return v.toString();
            if (v && typeof v === "object") {
                if (seen.has(v)) return "[Circular]";
                seen.add(v);
            }
            return v;
        });
        return json === undefined ? "null" : json;
    } catch (e) {
        return JSON.stringify({ error: "Could not serialize value" });
    }
};

const reply = (id, payload) => {
    try {
        const out = { id, type: payload.type };
        if (payload.type === "log") {
            out.level = payload.level;
            out.args = serialize(payload.args);
        } else if (payload.type === "result") {
            out.result = serialize(payload.result);
        } else {
            out.error = serialize(payload.error);
        }
        stdout.write(JSON.stringify(out) + "\n");
    } catch (err) {
        try {
            stdout.write(JSON.stringify({ id, type: "error", error: serialize("reply failed: " + String(err)) }) + "\n");
        } catch (_) {
            // pass
        }
    }
};

const prelude =
    "const require=undefined,process=undefined,module=undefined,exports=undefined," +
    "globalThis=undefined,global=undefined,window=undefined,document=undefined," +
    "fetch=undefined,XMLHttpRequest=undefined,WebSocket=undefined,navigator=undefined," +
    "location=undefined,localStorage=undefined,sessionStorage=undefined,FileReader=undefined," +
    "caches=undefined,postMessage=undefined,importScripts=undefined,self=undefined;";

const evaluate = async (id, code) => {
    // Logs stream to the host immediately, so output emitted before a
    // runaway loop still reaches it when the timeout fires.
    const consoleProxy = {
        log: (...args) => reply(id, { type: "log", level: "log", args }),
        info: (...args) => reply(id, { type: "log", level: "info", args }),
        warn: (...args) => reply(id, { type: "log", level: "warn", args }),
        error: (...args) => reply(id, { type: "log", level: "error", args }),
    };

    let fn;
    try {
        // Body form first, so "return ..." works at the top level.
        fn = new Function("console", '"use strict";\n' + prelude + "\nreturn (async () => {\n" + code + "\n})();");
    } catch (e) {
        // Expression-only snippets fall back to eval form.
        fn = new Function("console", '"use strict";\n' + prelude + "\nreturn (async () => eval(" + JSON.stringify(code) + "))();");
    }
    return await fn(consoleProxy);
};

const rl = readline.createInterface({ input: process.stdin, terminal: false });
rl.on("line", async (line) => {
    let msg;
    try {
        msg = JSON.parse(line);
    } catch (e) {
        return;
    }
    const { id, code } = msg || {};

    try {
        const result = await evaluate(id, String(code || ""));
        reply(id, { type: "result", result });
    } catch (err) {
        reply(id, { type: "error", error: err && err.message ? err.message : String(err) });
    }
});
`
