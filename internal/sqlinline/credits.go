package sqlinline

const QEnsureCreditSchema = `--sql 5a9d3b17-c8e6-4f02-a1b4-7e6f2d9c8a30
create table if not exists credit_balances (
    account    text primary key,
    remaining  int not null check (remaining >= 0),
    updated_at timestamptz not null default now()
);
`

const QSelectCreditBalance = `--sql 3f1c7a9e-52d4-4b2a-8d6f-9a0c1e4b7d23
select remaining
from credit_balances
where account = $1::text;
`

const QUpsertCreditBalance = `--sql 8b4e2d61-0f3a-4c87-b5e9-6d2a8f1c0e45
insert into credit_balances (account, remaining, updated_at)
values ($1::text, $2::int, now())
on conflict (account) do update set
    remaining = excluded.remaining,
    updated_at = now();
`
