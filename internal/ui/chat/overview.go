// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// overviewMarkdown is the landing page shown before a chat is opened.
const overviewMarkdown = `# SecureChat

A private assistant for drafting, summarizing and answering questions.
Your conversations stay inside the organization's environment.

Press **enter** or **ctrl+g** to start chatting, **ctrl+n** for a new chat
and **f1** for every shortcut.

## Writing good prompts

1. **Be specific.** Say exactly what you want: "List three risks in this
   plan" works better than "What do you think?".
2. **Be descriptive.** Give the audience, length and tone you expect.
3. **Repeat key instructions.** Restate constraints that matter most at
   the end of a long prompt.
4. **Order matters.** Put the instructions first and the material to work
   on after them.
5. **Give the model an out.** Ask it to say "I don't know" rather than
   guess when the answer is not in the material.

## Frequently asked questions

**How do I give feedback?**
Press **ctrl+f** on a chat to rate an answer from 1 to 5 stars and leave a
comment. The newest answer is selected first; use up and down to pick an
earlier one.

**Can I copy an answer?**
Press **ctrl+y** to copy the latest answer to the clipboard.

**Which files can I summarize?**
Press **ctrl+o** and enter a path to a .pdf, .json, .docx, .txt, .md or
.xml file. Scanned images inside PDFs are not read.

**Is my data secure?**
Requests go only to the configured backend. Deleting a chat also asks the
backend to discard its server-side state.

**What if an answer is wrong?**
Answers can be inaccurate. Cross-check them with reliable sources and
report the problem with a low rating.

**Can I keep a copy of a chat?**
Press **ctrl+e** to save the current chat as Markdown in the export
directory.
`
