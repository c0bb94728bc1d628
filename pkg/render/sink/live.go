package sink

import (
	"bytes"
	"fmt"
)

// liveJS re-applies the placement rules in the browser. Sizes are read
// from the rendered rects, so the script keeps working when an embedding
// page moves targets or edits the text.
const liveJS = `
    const svg = document.querySelector('svg');
    const GAP = 10;
    const rectOf = el => { const b = el.getBBox(); return {x: b.x, y: b.y, w: b.width, h: b.height}; };
    const clamp = (v, lo, hi) => Math.max(lo, Math.min(v, hi));
    function place(g) {
      const target = svg.getElementById(g.dataset.target);
      if (!target) return;
      const box = g.querySelector('.callout-box');
      const arrow = g.querySelector('.callout-arrow');
      const t = rectOf(target.querySelector('rect') || target);
      const bw = +box.getAttribute('width'), bh = +box.getAttribute('height');
      const aw = +g.dataset.arrowW, ah = +g.dataset.arrowH;
      const side = g.dataset.side, align = +g.dataset.align;
      const vertical = side === 'left' || side === 'right';
      const tPos = vertical ? t.y : t.x, tSize = vertical ? t.h : t.w;
      const bSize = vertical ? bh : bw;
      const raw = Math.floor(tPos + align*tSize - bSize/2);
      let anchor = raw;
      const bound = svg.getElementById('boundary');
      if (bound && g.dataset.bounded === 'true') {
        const b = rectOf(bound);
        const bPos = vertical ? b.y : b.x, bEnd = bPos + (vertical ? b.h : b.w);
        anchor = bSize > bEnd - bPos ? Math.ceil(bPos) : clamp(raw, Math.ceil(bPos), Math.floor(bEnd - bSize));
      }
      const tip = clamp(Math.floor(bSize/2 + raw - anchor), 0, Math.floor(bSize));
      let x, y, pts;
      switch (side) {
        case 'top':
          x = anchor; y = Math.floor(t.y - (bh + GAP));
          pts = [[tip-aw/2, bh], [tip+aw/2, bh], [tip, bh+ah]]; break;
        case 'bottom':
          x = anchor; y = Math.floor(t.y + t.h + GAP);
          pts = [[tip-aw/2, 0], [tip+aw/2, 0], [tip, -ah]]; break;
        case 'left':
          y = anchor; x = Math.floor(t.x - (bw + GAP));
          pts = [[bw, tip-ah/2], [bw, tip+ah/2], [bw+aw, tip]]; break;
        default:
          y = anchor; x = Math.floor(t.x + t.w + GAP);
          pts = [[0, tip-ah/2], [0, tip+ah/2], [-aw, tip]];
      }
      g.setAttribute('transform', 'translate(' + x + ',' + y + ')');
      arrow.setAttribute('points', pts.map(p => p.join(',')).join(' '));
    }
    const callouts = Array.from(document.querySelectorAll('.callout'));
    callouts.forEach(g => {
      place(g);
      if (g.dataset.mode === 'polling') setInterval(() => place(g), 5);
      else window.addEventListener('resize', () => place(g));
      if (g.getAttribute('opacity') === '0') {
        const target = svg.getElementById(g.dataset.target);
        if (!target) return;
        target.addEventListener('mouseenter', () => g.setAttribute('opacity', '1'));
        target.addEventListener('mouseleave', () => g.setAttribute('opacity', '0'));
      }
    });`

func renderLiveScript(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", liveJS)
}
