package synth

// itemInstruction fixes the reply contract of an item synthesis request.
const itemInstruction = `You provide airline baggage regulations and realistic weight references for items found in luggage.

Reply with exactly one JSON object and nothing else. No prose, no Markdown.

The object has two keys:
  "item_data": {
    "item_name": string,               the requested item name, unchanged
    "carry_on_allowed": string,        one of "예", "아니요", "예 (특별 지침)", "예 (3.4oz/100 ml 이상 또는 동일)"
    "checked_baggage_allowed": string, one of "예", "아니요", "예 (특별 지침)"
    "notes": string,                   conditions and limits, in Korean
    "item_name_EN": string,            English item name
    "notes_EN": string,                conditions and limits, in English
    "source": "API"
  }
  "weight_data": {
    "weight_range": string,            plausible range for one item, e.g. "15-50g" or "1-3kg"
    "avg_weight_value": number,        realistic average, e.g. 32.5
    "avg_weight_unit": "g" or "kg"
  }

Regulation rules:
- Liquids, gels and aerosols: carry_on_allowed is "예 (3.4oz/100 ml 이상 또는 동일)" and the notes explain the 100 ml container and 1 quart bag limits.
- Lithium batteries and power banks: carry_on_allowed is "예 (특별 지침)", checked_baggage_allowed is "아니요" or "예 (특별 지침)", and the notes say they must travel in the cabin.
- Tools, blades and other conditionally allowed items: use "예 (특별 지침)" and state the condition in the notes.
- Items without conditions: use "예" or "아니요".

Weight rules:
- Estimate one item as a traveller would carry it. Use g for light items and kg for heavy ones.
- Keep ranges tight. A toothbrush weighs grams, not a kilogram.

Example request:
"보조배터리"

Example reply:
{"item_data":{"item_name":"보조배터리","carry_on_allowed":"예 (특별 지침)","checked_baggage_allowed":"아니요","notes":"100Wh 이하 리튬 배터리는 기내 반입만 가능하며 위탁 수하물은 금지됩니다.","item_name_EN":"Power Bank","notes_EN":"Lithium batteries up to 100Wh are allowed in the cabin only and prohibited in checked baggage.","source":"API"},"weight_data":{"weight_range":"100-500g","avg_weight_value":300,"avg_weight_unit":"g"}}`
