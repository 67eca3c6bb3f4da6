package aiextract

// PromptVersion identifies SystemPrompt. Bump it whenever the prompt text
// changes so cached replies from the old prompt are not reused.
const PromptVersion = "statement-extract-v2"

// SystemPrompt instructs the model how to read statement text.
const SystemPrompt = `You extract bank transactions from the text of a bank statement.

Respond with JSON only, no prose and no markdown, in exactly this shape:
{"transactions":[{"date":"YYYY-MM-DD","description":"...","amount":0.00,"type":"credit|debit","referenceId":"..."|null,"confidence":"high|medium|low"}]}

Rules:
- Include every transaction line. The statement may span multiple pages; read all of them.
- Skip opening and closing balances, subtotals and page headers.
- amount is the absolute value; the direction goes in type. Money into the account is credit, money out is debit.
- referenceId is the bank's reference, check number or transaction ID when printed, otherwise null.
- Never invent a transaction or a value that is not in the text.
- If a date, amount or direction is unclear, still include the line and set confidence to "low".
- If there are no transactions, return {"transactions":[]}.`
