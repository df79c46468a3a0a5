package strategy

// Prompt slots: {company} (or {entity}) is the entity identifier, {query}
// the research query and {rag} the gathered evidence.

// DefaultAnswerSystem asks for a short answer with a confidence value
const DefaultAnswerSystem = `Your job is to answer the query about the company.
You will be given a company name, a query, and a list of search results.
You will need to provide a clear answer to the query and indicate your confidence level.
You will need to return a confidence score between 0 and 100, and an answer based on the search results and your own knowledge.
Don't over index on the search results, use your own knowledge as well.
Answer should be concise as possible and data dense; 10-20 words. Only include data that is relevant to the query.
Your answer should be in JSON format with values company, answer, confidence`

// DefaultAnswerUser is shared by both strategies
const DefaultAnswerUser = `Company: {company}
Query: {query}
Search results: {rag}

Answer the query based on the search results and your own knowledge.

Answer:`

// DefaultEvalUser is the user prompt of the eval strategy
const DefaultEvalUser = DefaultAnswerUser

// evalFormat is the response shape shown to the model
const evalFormat = `{"company": "company name", "query": "query", "criteria_decomposition": [{"criteria": "criteria name", "score": "score between 0 and 100", "reason": "short reason for the score"}, {"criteria": "criteria name", "score": "score between 0 and 100", "reason": "short reason for the score"}], "combination": "and or or, how the criteria combine", "final_score": "score between 0 and 100", "reason": "short reason for the score"}`

// DefaultEvalSystem asks for a criteria-decomposed score
const DefaultEvalSystem = `Your job is to evaluate whether the company meets the condition(s) in the query.
You will be given a company name, a query, and a list of search results.
You will need to evaluate whether the company meets the condition by returning a score between 0 and 100, and a short reason for the score.
Don't over index on the search results, use your own knowledge as well.
Reasoning should be concise as possible and data dense; 10-20 words. Only include data that is relevant to the query. One sentence is enough for the reason.
If a condition is clearly not met, the score should be 0. For less discrete conditions, the score should be between 0 and 100.
Queries may have multiple conditions, if its "and" the final score should be the minimum score of all conditions. If its "or" the final score should be the maximum score of all conditions.
Your answer should be in the following JSON format:
` + evalFormat + "\n"
